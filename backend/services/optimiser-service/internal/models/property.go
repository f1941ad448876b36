package models

// Device is a high-draw appliance attached to a property. Only shiftable
// devices may be moved between time slots in a scenario.
type Device struct {
	ID            int64   `db:"id" json:"device_id"`
	PropertyID    int64   `db:"property_id" json:"-"`
	Name          string  `db:"name" json:"device_name"`
	AverageDrawKW float64 `db:"average_draw_kw" json:"average_draw_kw"`
	IsShiftable   bool    `db:"is_shiftable" json:"is_shiftable"`
}

// Property is a single metered household with its appliances.
type Property struct {
	ID          int64    `db:"id" json:"property_id"`
	Address     string   `db:"address" json:"address"`
	Location    string   `db:"location" json:"location"`
	SqFootage   int      `db:"sq_footage" json:"sq_footage"`
	MpanID      string   `db:"mpan_id" json:"mpan_id"`
	TariffID    int64    `db:"tariff_id" json:"tariff_id"`
	PortfolioID *int64   `db:"portfolio_id" json:"portfolio_id,omitempty"`
	Devices     []Device `json:"devices"`
}

// DeviceByID looks up a device in the property's device list.
func (p Property) DeviceByID(deviceID int64) (Device, bool) {
	for _, device := range p.Devices {
		if device.ID == deviceID {
			return device, true
		}
	}
	return Device{}, false
}
