package hass

import (
	"fmt"

	"github.com/carlmjohnson/versioninfo"

	"github.com/alcortesm/physiofit-radar/app/sensor"
)

// DeviceID groups the entities of the radar in Home Assistant.
const DeviceID = "physiofit_radar"

const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// DiscoveryConfig is the payload Home Assistant expects on a discovery
// topic.
type DiscoveryConfig struct {
	Device              DiscoveryDevice `json:"device"`
	StateTopic          string          `json:"state_topic"`
	JSONAttributesTopic string          `json:"json_attributes_topic,omitempty"`
	StateClass          string          `json:"state_class,omitempty"`
	UnitOfMeasurement   string          `json:"unit_of_measurement,omitempty"`
	AvailabilityTopic   string          `json:"availability_topic,omitempty"`
	PayloadAvailable    string          `json:"payload_available,omitempty"`
	PayloadNotAvailable string          `json:"payload_not_available,omitempty"`
	Name                string          `json:"name"`
	UniqueID            string          `json:"unique_id"`
	Platform            string          `json:"platform"`
	Icon                string          `json:"icon,omitempty"`
}

type DiscoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
}

// Topics builds the topics of the radar from the validated base topic
// and discovery prefix.
type Topics struct {
	Base      string
	Discovery string
}

func (t Topics) Availability() string {
	return fmt.Sprintf("%s/bridge/state", t.Base)
}

func (t Topics) State(objectID string) string {
	return fmt.Sprintf("%s/sensor/%s/state", t.Base, objectID)
}

func (t Topics) Attributes(objectID string) string {
	return fmt.Sprintf("%s/sensor/%s/attributes", t.Base, objectID)
}

func (t Topics) Config(objectID string) string {
	return fmt.Sprintf("%s/sensor/%s/%s/config", t.Discovery, DeviceID, objectID)
}

// SensorDiscovery returns the discovery payload of the occupancy
// sensor.
func SensorDiscovery(topics Topics) DiscoveryConfig {
	return DiscoveryConfig{
		Device: DiscoveryDevice{
			Identifiers:  []string{DeviceID},
			Manufacturer: "PhysioFIT",
			Version:      versioninfo.Short(),
			Model:        "Auslastungsradar",
			Name:         "PhysioFIT Peine",
		},
		StateTopic:          topics.State(sensor.UniqueID),
		JSONAttributesTopic: topics.Attributes(sensor.UniqueID),
		StateClass:          "measurement",
		UnitOfMeasurement:   sensor.Unit,
		AvailabilityTopic:   topics.Availability(),
		PayloadAvailable:    PayloadOnline,
		PayloadNotAvailable: PayloadOffline,
		Name:                sensor.Name,
		UniqueID:            sensor.UniqueID,
		Platform:            "mqtt",
		Icon:                sensor.Icon,
	}
}
