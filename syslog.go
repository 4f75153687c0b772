//go:build !windows && !plan9

package main

import (
	"log/syslog"

	lsyslog "github.com/sirupsen/logrus/hooks/syslog"
)

// EnableSyslog mirrors log output to the system logger under the given tag.
func EnableSyslog(tag string) error {
	hook, err := lsyslog.NewSyslogHook("", "", syslog.LOG_DAEMON, tag)
	if err != nil {
		return err
	}
	logger.AddHook(hook)
	return nil
}
