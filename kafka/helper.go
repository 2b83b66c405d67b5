package kafka

import (
	"fmt"
	"net"
	"os"
	"strings"
)

// ConsumerGroup names a consumer group private to this worker. Each worker then sees
// every record on the topic instead of sharing partitions with its peers, which is what
// a broadcast such as a catalog invalidation needs.
func ConsumerGroup(component string) string {
	hostname := strings.TrimSpace(os.Getenv("HOSTNAME"))
	if hostname == "" {
		mac, err := getMacAddr()
		if err != nil {
			return component
		}
		hostname = strings.Join(mac, ":")
	}
	return fmt.Sprintf("%s-%s", hostname, component)
}

func getMacAddr() ([]string, error) {
	ifas, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var as []string
	for _, ifa := range ifas {
		if a := ifa.HardwareAddr.String(); a != "" {
			as = append(as, a)
		}
	}
	return as, nil
}
