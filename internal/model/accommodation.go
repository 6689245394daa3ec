package model

import (
	"strings"
	"time"
)

// Occupancy entry statuses. Cancelled is accepted on the wire only to be
// rejected; it is never stored.
const (
	StatusBooked    = "booked"
	StatusAvailable = "available"
	StatusBlocked   = "blocked"
	StatusCancelled = "cancelled"
)

// DefaultGuestName is stored when an entry arrives without a guest.
const DefaultGuestName = "N/A"

// ValidEntryStatus reports whether s may be stored on a calendar.
func ValidEntryStatus(s string) bool {
	switch s {
	case StatusBooked, StatusAvailable, StatusBlocked:
		return true
	}
	return false
}

// OccupancyEntry is one date range on an accommodation's calendar. Both
// ends are inclusive calendar days at midnight UTC.
type OccupancyEntry struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	GuestName string    `json:"guestName"`
	Status    string    `json:"status"`
}

// Localized holds an English and a Slovak rendering of one value.
type Localized struct {
	En string `json:"en,omitempty"`
	Sk string `json:"sk,omitempty"`
}

// LocalizedList is the list form of Localized, used by amenity groups.
type LocalizedList struct {
	En []string `json:"en,omitempty"`
	Sk []string `json:"sk,omitempty"`
}

type Location struct {
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// LocationDetails street, room, city and state are lowercased on write.
type LocationDetails struct {
	StreetAndNumber string `json:"streetAndNumber,omitempty"`
	RoomNumber      string `json:"roomNumber,omitempty"`
	City            string `json:"city,omitempty"`
	ZipCode         string `json:"zipCode,omitempty"`
	Country         string `json:"country,omitempty"`
	State           string `json:"state,omitempty"`
}

type FlexiblePrice struct {
	Name              string  `json:"name,omitempty"`
	Start             string  `json:"start,omitempty"`
	End               string  `json:"end,omitempty"`
	Price             float64 `json:"price,omitempty"`
	MinNumberOfPerson int     `json:"Minnumberofpersons,omitempty"`
	MinNumberOfNights int     `json:"Minnumberofnights,omitempty"`
}

// Accommodation is the aggregate root of a listing. The document is
// persisted as a whole; Version guards concurrent read-modify-write.
type Accommodation struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Name               string `json:"name,omitempty"`
	Description        string `json:"description,omitempty"`
	SpecialNote        string `json:"specialNote,omitempty"`
	CancellationPolicy string `json:"cancellationPolicy,omitempty"`
	URL                string `json:"url,omitempty"`
	VirtualTourURL     string `json:"virtualTourUrl,omitempty"`
	PhoneNumber        string `json:"phoneNumber"`

	PropertyType    Localized `json:"propertyType"`
	RentalForm      Localized `json:"rentalform"`
	Pet             Localized `json:"pet"`
	Smoking         Localized `json:"smoking"`
	PartyOrganizing Localized `json:"partyOrganizing"`

	Services                LocalizedList `json:"services"`
	BathroomAmenities       LocalizedList `json:"bathroomAmenities"`
	KitchenDiningAmenities  LocalizedList `json:"kitchenDiningAmenities"`
	HeatingCoolingAmenities LocalizedList `json:"heatingCoolingAmenities"`
	SafetyAmenities         LocalizedList `json:"safetyAmenities"`
	WellnessAmenities       LocalizedList `json:"wellnessAmenities"`
	OutdoorAmenities        LocalizedList `json:"outdoorAmenities"`
	ParkingFacilities       LocalizedList `json:"parkingFacilities"`
	CheckIn                 LocalizedList `json:"checkIn"`
	Meals                   LocalizedList `json:"meals"`

	Location        Location        `json:"location"`
	LocationDetails LocationDetails `json:"locationDetails"`
	Acreage         string          `json:"acreage,omitempty"`
	Tags            []string        `json:"tags"`

	PriceMonThus  float64         `json:"priceMonThus,omitempty"`
	PriceFriSun   float64         `json:"priceFriSun,omitempty"`
	FlexiblePrice []FlexiblePrice `json:"flexiblePrice,omitempty"`
	Discount      float64         `json:"discount,omitempty"`
	ExcludedDates []time.Time     `json:"excludedDates,omitempty"`

	NightMin  int `json:"nightMin"`
	NightMax  int `json:"nightMax"`
	Person    int `json:"person"`
	Beds      int `json:"beds,omitempty"`
	SingleBed int `json:"singlebed,omitempty"`
	DoubleBed int `json:"doublebed,omitempty"`
	Kitchen   int `json:"kitchen,omitempty"`
	WCs       int `json:"WCs,omitempty"`
	Bedroom   int `json:"bedroom,omitempty"`
	Bathroom  int `json:"bathroom,omitempty"`

	ArrivalFrom   string `json:"arrivalFrom,omitempty"`
	ArrivalTo     string `json:"arrivalTo,omitempty"`
	DepartureFrom string `json:"departureFrom,omitempty"`
	DepartureTo   string `json:"departureTo,omitempty"`

	Images  []string `json:"images"`
	ICalURL string   `json:"icalUrl,omitempty"`

	OccupancyCalendar []OccupancyEntry `json:"occupancyCalendar"`

	// Counters and the rating live in their own columns and are merged
	// into the document on read.
	Views            int64   `json:"views"`
	Clicks           int64   `json:"clicks"`
	CustomerInterest int64   `json:"customerInterest"`
	AverageRating    float64 `json:"averageRating"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize applies the write-time canonicalization rules.
func (a *Accommodation) Normalize() {
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	a.LocationDetails.StreetAndNumber = lower(a.LocationDetails.StreetAndNumber)
	a.LocationDetails.RoomNumber = lower(a.LocationDetails.RoomNumber)
	a.LocationDetails.City = lower(a.LocationDetails.City)
	a.LocationDetails.State = lower(a.LocationDetails.State)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	if a.OccupancyCalendar == nil {
		a.OccupancyCalendar = []OccupancyEntry{}
	}
	for i := range a.OccupancyCalendar {
		e := &a.OccupancyCalendar[i]
		if strings.TrimSpace(e.GuestName) == "" {
			e.GuestName = DefaultGuestName
		}
		if e.Status == "" {
			e.Status = StatusBooked
		}
	}
}

// AmenityGroups returns the ten amenity lists keyed by their JSON name.
func (a *Accommodation) AmenityGroups() map[string]LocalizedList {
	return map[string]LocalizedList{
		"services":                a.Services,
		"bathroomAmenities":       a.BathroomAmenities,
		"kitchenDiningAmenities":  a.KitchenDiningAmenities,
		"heatingCoolingAmenities": a.HeatingCoolingAmenities,
		"safetyAmenities":         a.SafetyAmenities,
		"wellnessAmenities":       a.WellnessAmenities,
		"outdoorAmenities":        a.OutdoorAmenities,
		"parkingFacilities":       a.ParkingFacilities,
		"checkIn":                 a.CheckIn,
		"meals":                   a.Meals,
	}
}

// PropertyTypes enumerates the accepted propertyType.en values.
var PropertyTypes = []string{
	"Nature House", "Wooden House", "Houseboats", "Farm House", "Dome House",
	"Wooden Dome", "Apartment", "Glamping", "Cottages", "Motels/Hostel",
	"Wooden Houses", "Guest Houses", "Secluded Accommodation", "Hotels",
	"Dormitories", "Campsites", "Treehouses", "Rooms", "Entire Homes",
	"Luxury Accommodation",
}

// ValidPropertyType reports whether en is one of PropertyTypes.
func ValidPropertyType(en string) bool {
	for _, p := range PropertyTypes {
		if p == en {
			return true
		}
	}
	return false
}

// ArchivedAccommodation is a soft-deleted accommodation.
type ArchivedAccommodation struct {
	Accommodation
	DeletedAt time.Time `json:"deletedAt"`
}

// OwnerRef is the projection the reconciliation sweep works on.
type OwnerRef struct {
	ID     string
	UserID string
}

// FeedRef names an accommodation with a configured ICS feed.
type FeedRef struct {
	ID      string
	ICalURL string
}

// Counters that can be incremented independently of the document.
const (
	CounterViews            = "views"
	CounterClicks           = "clicks"
	CounterCustomerInterest = "customerInterest"
)
