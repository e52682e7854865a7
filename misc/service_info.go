package misc

import (
	"os"
	"sync"

	"github.com/google/uuid"
)

var (
	serviceName     string
	serviceInstance string
	serviceInfoOnce sync.Once
)

func GetServiceName() string {
	loadServiceInfo()
	return serviceName
}

func GetServiceInstance() string {
	loadServiceInfo()
	return serviceInstance
}

func loadServiceInfo() {
	serviceInfoOnce.Do(func() {
		serviceName = os.Getenv("SERVICE_NAME")
		if serviceName == "" {
			serviceName = "marketflow"
		}
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serviceInstance = hostname + "-" + uuid.New().String()[0:8]
	})
}
