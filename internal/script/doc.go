// Package script runs Lua scripts against jsondoc documents.
//
// Scripts run in a sandboxed gopher-lua state with the base, package,
// table, string and math libraries. File, OS and debug access is not
// available, and require only loads the built-in libraries and jsondoc.
//
// The jsondoc module is preloaded and also set as a global:
//
//	local doc = jsondoc.new({ user = { name = "ada" } })
//
//	local id = doc:on_change(function(c)
//	    print(c.kind, c.path)
//	end, "user")
//
//	doc:set("user.name", "grace")   -- prints: update  user.name
//	doc:batch(function()
//	    doc:set("user.age", 36)
//	    doc:delete("user.name")
//	end)                            -- prints: batch
//	doc:undo()
//	doc:off_change(id, "user")
//	doc:log()
//
// Lua tables with keys 1..n become arrays; all other tables, including
// the empty table, become objects. jsondoc.null stands for a null value
// inside tables; get returns nil for a null value.
package script
