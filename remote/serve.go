package remote

import (
	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
)

// Serve is the entry point of a launched task. If argv is '<prog> -c <code>'
// with an encoded call, it dispatches the call and returns handled=true and
// the exit code the process should end with. Otherwise it does nothing.
//
// Binaries call it first thing in main:
//
//	if handled, code := remote.Serve(reg, os.Args); handled {
//		os.Exit(code)
//	}
func Serve(reg *Registry, argv []string) (handled bool, exitCode int) {
	if len(argv) != 3 || argv[1] != "-c" || !IsCall(argv[2]) {
		return false, 0
	}
	code := argv[2]
	if log.IsLevelEnabled(log.DebugLevel) {
		if inv, err := DecodeCall(code); err == nil {
			log.WithFields(
				log.Fields{
					"op":     inv.Op,
					"args":   spew.Sdump(inv.Args),
					"kwargs": spew.Sdump(inv.Kwargs),
				}).Debug("Serving remote call")
		}
	}

	status, err := reg.dispatch(code)
	if err != nil {
		log.WithFields(
			log.Fields{
				"exitCode": status,
				"err":      err,
			}).Error("Remote call failed")
	}
	return true, int(status)
}
