package parquet

import (
	"time"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

type accidentRow struct {
	ID         string `parquet:"name=p1, type=BYTE_ARRAY, convertedtype=UTF8"`
	DateRaw    string `parquet:"name=p2a, type=BYTE_ARRAY, convertedtype=UTF8"`
	Date       int64  `parquet:"name=date, type=INT64"` // unix seconds, 0 when unknown
	Time       int32  `parquet:"name=p2b, type=INT32"`
	RegionID   int32  `parquet:"name=p4a, type=INT32"`
	Region     string `parquet:"name=region, type=BYTE_ARRAY, convertedtype=UTF8"`
	Kind       int32  `parquet:"name=p6, type=INT32"`
	Collision  int32  `parquet:"name=p7, type=INT32"`
	Animal     int32  `parquet:"name=p8a, type=INT32"`
	Cause      int32  `parquet:"name=p10, type=INT32"`
	Alcohol    int32  `parquet:"name=p11, type=INT32"`
	Surface    int32  `parquet:"name=p16, type=INT32"`
	Visibility int32  `parquet:"name=p19, type=INT32"`
	Direction  int32  `parquet:"name=p28, type=INT32"`
	RoadType   int32  `parquet:"name=p36, type=INT32"`
}

type consequenceRow struct {
	ID         string `parquet:"name=p1, type=BYTE_ARRAY, convertedtype=UTF8"`
	PersonType int32  `parquet:"name=p59a, type=INT32"`
	Injury     int32  `parquet:"name=p59g, type=INT32"`
}

type locationRow struct {
	ID string  `parquet:"name=p1, type=BYTE_ARRAY, convertedtype=UTF8"`
	D  float64 `parquet:"name=d, type=DOUBLE"`
	E  float64 `parquet:"name=e, type=DOUBLE"`
}

func fromAccident(a domain.Accident) accidentRow {
	var date int64
	if !a.Date.IsZero() {
		date = a.Date.Unix()
	}
	return accidentRow{
		ID:         a.ID,
		DateRaw:    a.DateRaw,
		Date:       date,
		Time:       int32(a.Time),
		RegionID:   int32(a.RegionID),
		Region:     a.Region,
		Kind:       int32(a.Kind),
		Collision:  int32(a.Collision),
		Animal:     int32(a.Animal),
		Cause:      int32(a.Cause),
		Alcohol:    int32(a.Alcohol),
		Surface:    int32(a.Surface),
		Visibility: int32(a.Visibility),
		Direction:  int32(a.Direction),
		RoadType:   int32(a.RoadType),
	}
}

func (r accidentRow) toDomain() domain.Accident {
	var date time.Time
	if r.Date != 0 {
		date = time.Unix(r.Date, 0).UTC()
	}
	return domain.Accident{
		ID:         r.ID,
		DateRaw:    r.DateRaw,
		Date:       date,
		Time:       int(r.Time),
		RegionID:   int(r.RegionID),
		Region:     r.Region,
		Kind:       int(r.Kind),
		Collision:  int(r.Collision),
		Animal:     int(r.Animal),
		Cause:      int(r.Cause),
		Alcohol:    int(r.Alcohol),
		Surface:    int(r.Surface),
		Visibility: int(r.Visibility),
		Direction:  int(r.Direction),
		RoadType:   int(r.RoadType),
	}
}

func fromConsequence(c domain.Consequence) consequenceRow {
	return consequenceRow{ID: c.ID, PersonType: int32(c.PersonType), Injury: int32(c.Injury)}
}

func (r consequenceRow) toDomain() domain.Consequence {
	return domain.Consequence{ID: r.ID, PersonType: int(r.PersonType), Injury: int(r.Injury)}
}

func fromLocation(l domain.Location) locationRow {
	return locationRow(l)
}

func (r locationRow) toDomain() domain.Location {
	return domain.Location(r)
}
