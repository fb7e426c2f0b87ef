package config

import "time"

const (
	ServerModeProd string = "prod"
	ServerModeDev  string = "dev"
)

type Configuration struct {
	Server     Server
	Agent      Agent
	Controller Controller
	Sos        Sos
	Upload     Upload

	// Log
	LogFormat string `default:"console"`
	LogLevel  string `default:"info"`
}

type Server struct {
	HTTPPort int    `default:"8080"`
	Mode     string `default:"dev"`
}

type Agent struct {
	// DataFolder holds the run history database. Empty means in-memory.
	DataFolder string
}

// Controller holds the credentials used to reach the cluster controller for
// node resolution.
type Controller struct {
	Endpoint   string
	Username   string
	Password   string
	CACertFile string
	// Model is the default model when an action does not name one.
	Model string
}

// Sos configures the sos collect invocation.
type Sos struct {
	// Binary is the local sos executable.
	Binary string `default:"sos"`
	// Command is the sos command alias to run on the remote nodes,
	// passed through as --sos-cmd.
	Command string `default:"sos"`
	TmpDir  string `default:"/tmp"`
	SSHUser string `default:"ubuntu"`
	// CollectTimeout bounds the external collection process. Zero means
	// no timeout.
	CollectTimeout time.Duration
}

// Upload configures the transfer of collected reports to the intake server.
type Upload struct {
	Method         string `default:"sftp"`
	Server         string
	Port           int `default:"22"`
	Username       string
	Password       string
	PrivateKeyFile string
}
