package config

const (
	ConfigDir            = ".calreader"
	ConfigFile           = "config"
	DefaultLogLevel      = "info"
	DefaultEncoding      = "iso-8859-1"
	DefaultParallel      = 4
	DefaultSnapshotDB    = "snapshots.db"
	DefaultExportDir     = "export"
	DefaultServerAddress = "127.0.0.1"
	DefaultServerPort    = 8080
	DefaultRemoteAddress = "127.0.0.1"
	DefaultRemotePort    = 8080
	DefaultImageBaseAddr = 0
)
