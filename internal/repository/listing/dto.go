package listing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/aptdex/internal/domain"
	domlisting "github.com/kailas-cloud/aptdex/internal/domain/listing"
)

func apartmentKey(id string) string {
	return fmt.Sprintf("%sapartment:%s", domain.KeyPrefix, id)
}

func apartmentID(key string) string {
	return strings.TrimPrefix(key, apartmentKey(""))
}

func neighborhoodKey(id string) string {
	return fmt.Sprintf("%sneighborhood:%s", domain.KeyPrefix, id)
}

func buildApartmentFields(a *domlisting.Apartment) map[string]string {
	return map[string]string{
		"neighborhood_id": a.NeighborhoodID,
		"title":           a.Title,
		"address":         a.Address,
		"description":     a.Description,
		"rent_price":      strconv.FormatFloat(a.RentPrice, 'f', -1, 64),
	}
}

func parseApartmentFields(id string, m map[string]string) domlisting.Apartment {
	return domlisting.Apartment{
		ID:             id,
		NeighborhoodID: m["neighborhood_id"],
		Title:          m["title"],
		Address:        m["address"],
		Description:    m["description"],
		RentPrice:      parseRent(m),
	}
}

func parseRent(m map[string]string) float64 {
	f, err := strconv.ParseFloat(m["rent_price"], 64)
	if err != nil {
		return 0
	}
	return f
}

func buildNeighborhoodFields(n *domlisting.Neighborhood) map[string]string {
	return map[string]string{
		"name":        n.Name,
		"city":        n.City,
		"description": n.Description,
	}
}

func parseNeighborhoodFields(id string, m map[string]string) domlisting.Neighborhood {
	return domlisting.Neighborhood{
		ID:          id,
		Name:        m["name"],
		City:        m["city"],
		Description: m["description"],
	}
}
