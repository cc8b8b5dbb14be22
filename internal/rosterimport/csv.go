package rosterimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/LetterLobby/LL-Backend/internal/roster"
	"github.com/lib/pq"
)

func readAll(path string, required []string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range required {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	var rows []map[string]string
	for _, rec := range records[1:] {
		row := make(map[string]string, len(col))
		for name, i := range col {
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseDistricts reads a district catalog CSV with columns
// id, name, country_code, region.
func ParseDistricts(path string) ([]roster.District, error) {
	rows, err := readAll(path, []string{"id", "name", "country_code"})
	if err != nil {
		return nil, err
	}

	var out []roster.District
	for i, row := range rows {
		if row["id"] == "" || row["country_code"] == "" {
			return nil, fmt.Errorf("row %d: missing id or country_code", i+2)
		}
		out = append(out, roster.District{
			ID:          row["id"],
			Name:        row["name"],
			CountryCode: strings.ToUpper(row["country_code"]),
			Region:      row["region"],
		})
	}
	return out, nil
}

// ParseRepresentatives reads a roster CSV with columns external_id,
// full_name, party, role, country_code, district_id, region_code,
// email, web_form_url, phone, urls (semicolon-separated). A member must
// carry a district_id or a region_code; upper-chamber members carry only
// the latter.
func ParseRepresentatives(path string) ([]roster.Representative, error) {
	rows, err := readAll(path, []string{"external_id", "full_name", "country_code"})
	if err != nil {
		return nil, err
	}

	var out []roster.Representative
	for i, row := range rows {
		if row["external_id"] == "" || row["full_name"] == "" {
			return nil, fmt.Errorf("row %d: missing external_id or full_name", i+2)
		}
		if row["district_id"] == "" && row["region_code"] == "" {
			return nil, fmt.Errorf("row %d: %s has neither district_id nor region_code", i+2, row["external_id"])
		}

		var urls pq.StringArray
		for _, u := range strings.Split(row["urls"], ";") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}

		out = append(out, roster.Representative{
			ExternalID:  row["external_id"],
			FullName:    row["full_name"],
			Party:       row["party"],
			Role:        row["role"],
			CountryCode: strings.ToUpper(row["country_code"]),
			DistrictID:  row["district_id"],
			RegionCode:  row["region_code"],
			Email:       row["email"],
			WebFormURL:  row["web_form_url"],
			Phone:       row["phone"],
			URLs:        urls,
		})
	}
	return out, nil
}
