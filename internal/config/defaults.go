package config

import "time"

const defaultPort = 8080

var defaultBot = Bot{
	APIBase:     "https://api.telegram.org",
	SendDelay:   50 * time.Millisecond,
	WebhookWait: 30 * time.Second,
	NotifyWait:  10 * time.Second,
}

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "kuryer_db",
}

var defaultDispatch = Dispatch{
	QueueSize: 256,
}

var defaultSweep = Sweep{
	CronSpec: "@hourly",
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultBot returns the default Telegram bot settings.
func DefaultBot() Bot {
	return defaultBot
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultDispatch returns the default dispatch loop settings.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultSweep returns the default token sweep settings.
func DefaultSweep() Sweep {
	return defaultSweep
}
