// internal/agent/scanner.go

package agent

import (
	"fmt"
	"math/rand"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

// Scanner discovers the devices currently present on the network.
type Scanner interface {
	Scan() ([]models.DeviceSnapshot, error)
}

var (
	simManufacturers = []string{"Apple", "Samsung", "TP-Link", "Xiaomi", "Intel", "Raspberry Pi"}
	simDeviceTypes   = []string{"phone", "laptop", "tablet", "tv", "iot", "router"}
)

// SimulatedScanner fabricates a stable device population: macs are drawn
// once at construction, so every scan reports the same set and the
// collector sees the same devices it would from a real network.
type SimulatedScanner struct {
	devices []models.DeviceSnapshot
}

func NewSimulatedScanner(count int, rng *rand.Rand) *SimulatedScanner {
	devices := make([]models.DeviceSnapshot, count)
	for i := range devices {
		mac := fmt.Sprintf("02:%02x:%02x:%02x:%02x:%02x",
			rng.Intn(256), rng.Intn(256), rng.Intn(256), rng.Intn(256), rng.Intn(256))
		ip := fmt.Sprintf("192.168.1.%d", 100+i)
		hostname := fmt.Sprintf("device-%d.local", i+1)
		manufacturer := simManufacturers[rng.Intn(len(simManufacturers))]
		deviceType := simDeviceTypes[rng.Intn(len(simDeviceTypes))]
		devices[i] = models.DeviceSnapshot{
			MACAddress:   mac,
			IPAddress:    &ip,
			Hostname:     &hostname,
			Manufacturer: &manufacturer,
			DeviceType:   &deviceType,
		}
	}
	return &SimulatedScanner{devices: devices}
}

func (s *SimulatedScanner) Scan() ([]models.DeviceSnapshot, error) {
	out := make([]models.DeviceSnapshot, len(s.devices))
	copy(out, s.devices)
	return out, nil
}

// ARPScanner reads the host's neighbor table. Not implemented on this
// branch; it reports an empty network rather than failing the loop.
// TODO: parse /proc/net/arp on linux.
type ARPScanner struct{}

func NewARPScanner() *ARPScanner {
	return &ARPScanner{}
}

func (s *ARPScanner) Scan() ([]models.DeviceSnapshot, error) {
	return []models.DeviceSnapshot{}, nil
}
