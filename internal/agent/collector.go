// internal/agent/collector.go

package agent

import (
	"math/rand"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

// Collector measures per-device usage since the previous collection.
type Collector interface {
	Collect(devices []models.DeviceSnapshot) ([]models.StatSample, error)
}

// SimulatedCollector draws random byte counts per device. With
// probability alertProb a device gets a burst in the upper half of the
// range, which is what pushes thresholds over in a demo setup.
type SimulatedCollector struct {
	minBytes  int64
	maxBytes  int64
	alertProb float64
	rng       *rand.Rand
}

func NewSimulatedCollector(minBytes, maxBytes int64, alertProb float64, rng *rand.Rand) *SimulatedCollector {
	if maxBytes <= minBytes {
		maxBytes = minBytes + 1
	}
	return &SimulatedCollector{minBytes: minBytes, maxBytes: maxBytes, alertProb: alertProb, rng: rng}
}

func (c *SimulatedCollector) Collect(devices []models.DeviceSnapshot) ([]models.StatSample, error) {
	samples := make([]models.StatSample, 0, len(devices))
	for _, device := range devices {
		var up, down int64
		if c.rng.Float64() < c.alertProb {
			up = c.drawRange(c.maxBytes/2, c.maxBytes)
			down = c.drawRange(c.maxBytes/2, c.maxBytes)
		} else {
			normalMax := c.maxBytes * 3 / 10
			if normalMax <= c.minBytes {
				normalMax = c.minBytes + 1
			}
			up = c.drawRange(c.minBytes, normalMax)
			down = c.drawRange(c.minBytes, normalMax)
		}
		samples = append(samples, models.StatSample{
			MACAddress:      device.MACAddress,
			BytesUploaded:   up,
			BytesDownloaded: down,
		})
	}
	return samples, nil
}

func (c *SimulatedCollector) drawRange(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + c.rng.Int63n(hi-lo)
}

// InterfaceCollector would read interface counters from the host. Not
// implemented on this branch; it reports no samples.
type InterfaceCollector struct{}

func NewInterfaceCollector() *InterfaceCollector {
	return &InterfaceCollector{}
}

func (c *InterfaceCollector) Collect(devices []models.DeviceSnapshot) ([]models.StatSample, error) {
	return []models.StatSample{}, nil
}
