/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic.
	Call ParseFlags once from main, tests run with the default values.

TODO(jamie): move to more powerful cli lib https://github.com/spf13/cobra
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"

	StorePostgres = "postgres"
	StoreMemory   = "memory"

	SessionRedis  = "redis"
	SessionMemory = "memory"

	ImageLocal = "local"
	ImageS3    = "s3"

	MailerSes   = "ses"
	MailerSlack = "slack"
	MailerLog   = "log"
)

var (
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName   = flag.String("service", APIServer, "service name reported to logs and traces")
	SettingsPath  = flag.String("settings", "", "path to the blog yaml settings, built-in defaults are used when empty")
	StoreKind     = flag.String("store", StorePostgres, "'postgres' or 'memory'")
	SessionStore  = flag.String("session_store", SessionRedis, "'redis' or 'memory'")
	ImageStore    = flag.String("image_store", ImageLocal, "'local' or 's3'")
	MailerKind    = flag.String("mailer", MailerLog, "'ses', 'slack' or 'log'")
	Port          = flag.Int("port", 8080, "port the api server listens on")
)

func ParseFlags() {
	flag.Parse()
}
