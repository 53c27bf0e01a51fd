package utils

import "time"

// ParseDate interpreta datas no formato YYYY-MM-DD vindas da query string
// (filtro "since" da listagem de ciclos). String vazia vira data zero.
func ParseDate(dateStr string) (*time.Time, error) {
	var date time.Time

	if dateStr != "" {
		incomingDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, err
		}

		date = incomingDate
	}

	return &date, nil
}
