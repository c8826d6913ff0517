// Package luaext loads external plugins written in Lua.
//
// An external plugin is a directory containing a plugin.json manifest and a
// main Lua script (init.lua by default). The script declares plain global
// functions for the lifecycle it cares about:
//
//	function activate()          end  -- required
//	function deactivate()        end  -- optional
//	function on_load()           end  -- optional, once per process
//	function on_ready()          end  -- optional, once per activation
//	function register_actions()  end  -- optional, returns an array of
//	                                  -- {id=, title=, menu=, shortcut=,
//	                                  --  run=function() end} tables
//
// Host capabilities are exposed through the global "mw" module bound before
// the script runs. Each plugin gets its own interpreter; a script error in
// one plugin never reaches another.
package luaext
