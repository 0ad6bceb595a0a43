// Package all registers every built-in adapter and wrapper. Import it for
// its side effects:
//
//	import _ "github.com/root-talis/kaizou/adapter/all"
package all

import (
	_ "github.com/root-talis/kaizou/adapter/mysql"
	_ "github.com/root-talis/kaizou/adapter/postgres"
	_ "github.com/root-talis/kaizou/adapter/prefix"
	_ "github.com/root-talis/kaizou/adapter/proxy"
	_ "github.com/root-talis/kaizou/adapter/redshift"
	_ "github.com/root-talis/kaizou/adapter/sqlite"
	_ "github.com/root-talis/kaizou/adapter/sqlserver"
)
