package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hargun03/accidents-analysis/models"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Canonical column labels after normalization.
const (
	ColCrashDate          = "crash date"
	ColCrashTime          = "crash time"
	ColLatitude           = "latitude"
	ColLongitude          = "longitude"
	ColPersonsInjured     = "number_of_persons_injured"
	ColPedestriansInjured = "injured_pedestrians"
	ColCyclistsInjured    = "injured_cyclists"
	ColMotoristsInjured   = "injured_motorists"
	ColOnStreetName       = "on street name"
)

var ErrMalformedSource = errors.New("malformed collisions source")

var columnRenames = map[string]string{
	"number of persons injured":     ColPersonsInjured,
	"number of pedestrians injured": ColPedestriansInjured,
	"number of cyclist injured":     ColCyclistsInjured,
	"number of motorist injured":    ColMotoristsInjured,
}

var requiredColumns = []string{
	ColCrashDate, ColCrashTime, ColLatitude, ColLongitude,
	ColPersonsInjured, ColPedestriansInjured, ColCyclistsInjured, ColMotoristsInjured,
	ColOnStreetName,
}

var (
	dateLayouts = []string{"01/02/2006", "2006-01-02", "2006-01-02T15:04:05.000"}
	timeLayouts = []string{"15:04", "15:04:05"}
)

// NormalizeColumn lowercases a source label (spaces kept) and applies the
// fixed renames of the injury columns.
func NormalizeColumn(name string) string {
	lower := strings.ToLower(name)
	if renamed, ok := columnRenames[lower]; ok {
		return renamed
	}
	return lower
}

// fullTableKey holds the table of a read that reached end of file. Every
// row limit at or past the file length shares it.
const fullTableKey = "all"

// Table is a loaded prefix of the dataset. It is never mutated after load.
type Table struct {
	RowLimit int
	Records  []models.Collision
	Dropped  int

	// Scanned counts data rows read, dropped ones included.
	Scanned   int
	// Exhausted is set when the file ended before RowLimit rows.
	Exhausted bool
}

// withLimit returns t labelled with the requested row limit, sharing records.
func (t *Table) withLimit(rowLimit int) *Table {
	if t.RowLimit == rowLimit {
		return t
	}
	c := *t
	c.RowLimit = rowLimit
	return &c
}

// Loader reads the collisions CSV and memoizes one Table per row limit.
// Entries never expire.
type Loader struct {
	path  string
	memo  *cache.Cache
	group singleflight.Group
	open  func(name string) (io.ReadCloser, error)

	// fileRows is the data row count of the file, -1 until a read reaches
	// end of file.
	fileRows atomic.Int64
}

func NewLoader(path string) *Loader {
	l := &Loader{
		path: path,
		memo: cache.New(cache.NoExpiration, 0),
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}
	l.fileRows.Store(-1)
	return l
}

func (l *Loader) memoKey(rowLimit int) string {
	if n := l.fileRows.Load(); n >= 0 && int64(rowLimit) >= n {
		return fullTableKey
	}
	return strconv.Itoa(rowLimit)
}

func (l *Loader) Load(rowLimit int) (*Table, error) {
	if rowLimit < 0 {
		return nil, fmt.Errorf("%w: row limit %d is negative", ErrInvalidControl, rowLimit)
	}

	key := l.memoKey(rowLimit)
	if v, ok := l.memo.Get(key); ok {
		memoHits.Inc()
		return v.(*Table).withLimit(rowLimit), nil
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		// A concurrent read may have stored the entry or learned the
		// file length since the key was chosen.
		if v, ok := l.memo.Get(l.memoKey(rowLimit)); ok {
			return v, nil
		}
		table, err := l.read(rowLimit)
		if err != nil {
			return nil, err
		}
		if table.Exhausted {
			l.memo.Set(fullTableKey, table, cache.NoExpiration)
			l.fileRows.Store(int64(table.Scanned))
		} else {
			l.memo.Set(strconv.Itoa(rowLimit), table, cache.NoExpiration)
		}
		return table, nil
	})
	if err != nil {
		loadFailures.Inc()
		return nil, err
	}
	return v.(*Table).withLimit(rowLimit), nil
}

func (l *Loader) read(rowLimit int) (*Table, error) {
	start := time.Now()

	file, err := l.open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collisions source: %w", err)
	}
	defer file.Close()

	table, err := ParseCollisions(file, rowLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	datasetLoads.Inc()
	rowsDropped.Add(float64(table.Dropped))
	loadDuration.Observe(time.Since(start).Seconds())
	log.Printf("loaded %d collisions from %s (row limit %d, %d dropped without coordinates) in %s",
		len(table.Records), l.path, rowLimit, table.Dropped, time.Since(start).Round(time.Millisecond))

	return table, nil
}

// ParseCollisions reads at most rowLimit data rows from r. Rows without a
// latitude or longitude are dropped; any other unreadable value fails the
// whole load.
func ParseCollisions(r io.Reader, rowLimit int) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedSource)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedSource, err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		colMap[NormalizeColumn(col)] = i
	}
	typed := make(map[string]bool, len(requiredColumns))
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedSource, col)
		}
		typed[col] = true
	}
	var extra []sourceColumn
	for name, i := range colMap {
		if !typed[name] {
			extra = append(extra, sourceColumn{name: name, index: i})
		}
	}

	table := &Table{RowLimit: rowLimit, Records: make([]models.Collision, 0)}

	for line := 2; line-2 < rowLimit; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			table.Exhausted = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSource, line, err)
		}

		table.Scanned++
		rec, ok, err := parseRow(row, colMap, extra)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSource, line, err)
		}
		if !ok {
			table.Dropped++
			continue
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

type sourceColumn struct {
	name  string
	index int
}

// parseRow reports ok=false for rows missing coordinates.
func parseRow(row []string, colMap map[string]int, extra []sourceColumn) (models.Collision, bool, error) {
	var rec models.Collision

	latRaw, lonRaw := row[colMap[ColLatitude]], row[colMap[ColLongitude]]
	if latRaw == "" || lonRaw == "" {
		return rec, false, nil
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return rec, false, fmt.Errorf("invalid latitude %q", latRaw)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return rec, false, fmt.Errorf("invalid longitude %q", lonRaw)
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return rec, false, nil
	}

	ts, err := parseTimestamp(row[colMap[ColCrashDate]], row[colMap[ColCrashTime]])
	if err != nil {
		return rec, false, err
	}

	rec.Timestamp = ts
	rec.Latitude = lat
	rec.Longitude = lon

	counts := []struct {
		col  string
		dest **int
	}{
		{ColPersonsInjured, &rec.PersonsInjured},
		{ColPedestriansInjured, &rec.PedestriansInjured},
		{ColCyclistsInjured, &rec.CyclistsInjured},
		{ColMotoristsInjured, &rec.MotoristsInjured},
	}
	for _, c := range counts {
		n, err := parseCount(row[colMap[c.col]])
		if err != nil {
			return rec, false, fmt.Errorf("invalid %s: %v", c.col, err)
		}
		*c.dest = n
	}

	if street := row[colMap[ColOnStreetName]]; street != "" {
		rec.OnStreetName = &street
	}

	for _, col := range extra {
		if v := row[col.index]; v != "" {
			if rec.Extra == nil {
				rec.Extra = make(map[string]string, len(extra))
			}
			rec.Extra[col.name] = v
		}
	}

	return rec, true, nil
}

// parseTimestamp merges the separate date and time fields into one
// timestamp truncated to the second.
func parseTimestamp(dateRaw, timeRaw string) (time.Time, error) {
	date, err := parseWithLayouts(dateRaw, dateLayouts)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid crash date %q", dateRaw)
	}
	clock, err := parseWithLayouts(timeRaw, timeLayouts)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid crash time %q", timeRaw)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC), nil
}

func parseWithLayouts(value string, layouts []string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseCount returns nil for an empty cell. Whole floats such as "2.0"
// are accepted.
func parseCount(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%q is not a whole number", value)
	}
	n := int(f)
	return &n, nil
}
