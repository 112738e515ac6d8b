package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/isdelr/ewaste-ai-be/internal/models"
)

// KmPerDegree scales the planar degree distance to kilometres.
const KmPerDegree = 111

var seedCenters = []models.RecyclingCenter{
	{
		ID:        1,
		Name:      "Green E-Waste Recyclers",
		Address:   "123 Eco Street, Green City",
		Latitude:  40.7128,
		Longitude: -74.0060,
		Accepts:   []string{"Batteries", "Circuit Boards", "Screens"},
		Rating:    4.8,
		Hours:     "Mon-Fri 9AM-6PM",
		Phone:     "+1-555-123-4567",
		Website:   "https://greenewaste.example.com",
	},
	{
		ID:        2,
		Name:      "Tech Salvage Center",
		Address:   "456 Tech Avenue, Innovation District",
		Latitude:  40.7589,
		Longitude: -73.9851,
		Accepts:   []string{"Laptops", "Smartphones", "Tablets"},
		Rating:    4.5,
		Hours:     "Tue-Sat 10AM-7PM",
		Phone:     "+1-555-987-6543",
		Website:   "https://techsalvage.example.com",
	},
	{
		ID:        3,
		Name:      "Harbor Metals & Cable Reclaim",
		Address:   "78 Pier Road, Harbor Point",
		Latitude:  40.6782,
		Longitude: -73.9442,
		Accepts:   []string{"Copper Wires", "Cables", "Circuit Boards"},
		Rating:    4.3,
		Hours:     "Mon-Sat 7AM-4PM",
		Phone:     "+1-555-246-8100",
		Website:   "https://harbormetals.example.com",
	},
	{
		ID:        4,
		Name:      "Northside Battery Drop-Off",
		Address:   "9 Maple Lane, Northside",
		Latitude:  40.8448,
		Longitude: -73.8648,
		Accepts:   []string{"Batteries", "Smartphones"},
		Rating:    4.6,
		Hours:     "Daily 8AM-8PM",
		Phone:     "+1-555-314-1592",
		Website:   "https://northsidebattery.example.com",
	},
	{
		ID:        5,
		Name:      "Riverside Screen & Plastics",
		Address:   "210 River Drive, Westbank",
		Latitude:  40.7357,
		Longitude: -74.1724,
		Accepts:   []string{"Screens", "Plastic Casing", "Monitors"},
		Rating:    4.1,
		Hours:     "Mon-Fri 10AM-5PM",
		Phone:     "+1-555-777-2020",
		Website:   "https://riversidescreens.example.com",
	},
}

// CenterServiceProvider defines the interface for the recycling center directory.
type CenterServiceProvider interface {
	List(query *models.GeoPoint, limit int) []models.RecyclingCenter
	GetByID(id int) (models.RecyclingCenter, error)
	Count() int
}

// CenterService serves the static directory of recycling facilities.
type CenterService struct {
	centers []models.RecyclingCenter
}

// NewCenterService creates a CenterService over the built-in seed list.
func NewCenterService() *CenterService {
	return NewCenterServiceWith(seedCenters)
}

// NewCenterServiceWith creates a CenterService over the given centers, kept in order.
func NewCenterServiceWith(centers []models.RecyclingCenter) *CenterService {
	own := make([]models.RecyclingCenter, len(centers))
	for i, c := range centers {
		own[i] = copyCenter(c)
	}
	return &CenterService{centers: own}
}

// List returns up to limit centers. Without a query point the seed order is kept;
// with one, centers are ranked by PlanarDistanceKm and carry their distance.
func (s *CenterService) List(query *models.GeoPoint, limit int) []models.RecyclingCenter {
	out := make([]models.RecyclingCenter, len(s.centers))
	for i, c := range s.centers {
		out[i] = copyCenter(c)
	}

	if query != nil {
		for i := range out {
			d := PlanarDistanceKm(*query, models.GeoPoint{Latitude: out[i].Latitude, Longitude: out[i].Longitude})
			out[i].DistanceKm = &d
			out[i].Distance = fmt.Sprintf("%.1f km", d)
		}
		sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	}

	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// GetByID returns a single center without distance information.
func (s *CenterService) GetByID(id int) (models.RecyclingCenter, error) {
	for _, c := range s.centers {
		if c.ID == id {
			return copyCenter(c), nil
		}
	}
	return models.RecyclingCenter{}, ErrCenterNotFound
}

// Count returns the number of centers in the directory.
func (s *CenterService) Count() int {
	return len(s.centers)
}

// PlanarDistanceKm treats degrees as a flat grid scaled by KmPerDegree.
// It is not a geodesic distance; longitude degrees are not shortened by latitude.
func PlanarDistanceKm(a, b models.GeoPoint) float64 {
	dLat := b.Latitude - a.Latitude
	dLng := b.Longitude - a.Longitude
	return math.Sqrt(dLat*dLat+dLng*dLng) * KmPerDegree
}

func copyCenter(c models.RecyclingCenter) models.RecyclingCenter {
	c.Accepts = append([]string(nil), c.Accepts...)
	c.Distance = ""
	c.DistanceKm = nil
	return c
}
