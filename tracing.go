package tafuzz

import "github.com/sirupsen/logrus"

// traceBegin and traceEnd are the Options.Trace instrumentation points: one
// structured log line per call, naming the call and its materialized
// arguments/return value. Silent no-ops when tracing is off, so a Target
// built with Trace: false pays nothing beyond the branch.
func traceBegin(opts Options, call string, args []any) {
	if !opts.Trace {
		return
	}
	logrus.WithField("args", args).Debugf("tafuzz: call %s", call)
}

func traceEnd(opts Options, call string, ret any, err error) {
	if !opts.Trace {
		return
	}
	entry := logrus.WithField("ret", ret)
	if err != nil {
		entry.WithError(err).Debugf("tafuzz: call %s failed", call)
		return
	}
	entry.Debugf("tafuzz: call %s done", call)
}
