package config

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// appID keys the protected machine id.
const appID = "simpleserial"

// MachineID retrieves the unique ID identifying the machine, empty when
// it can't be determined.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return ""
	}
	if len(id) > 16 {
		id = id[:16]
	}
	return id
}
