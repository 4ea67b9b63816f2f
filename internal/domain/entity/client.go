package entity

import "time"

// Client cliente de la distribuidora. NIT único; coordenadas opcionales para rutas.
type Client struct {
	ID        string
	Name      string
	NIT       string
	Address   string
	Phone     string
	Contact   string
	Latitude  *float64
	Longitude *float64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasLocation indica si el cliente está geolocalizado.
func (c *Client) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// ValidCoordinates latitud en [-90, 90] y longitud en [-180, 180]; nil se acepta.
func ValidCoordinates(lat, lng *float64) bool {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return false
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return false
	}
	return true
}
