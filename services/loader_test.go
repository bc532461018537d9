package services

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

const samplePath = "testdata/collisions_sample.csv"

func loadSample(t *testing.T, rowLimit int) *Table {
	t.Helper()
	table, err := NewLoader(samplePath).Load(rowLimit)
	if err != nil {
		t.Fatalf("Load(%d) failed: %v", rowLimit, err)
	}
	return table
}

// countingLoader wraps the loader's opener so tests can see file reads.
func countingLoader(path string) (*Loader, *int) {
	l := NewLoader(path)
	var mu sync.Mutex
	opens := 0
	l.open = func(name string) (io.ReadCloser, error) {
		mu.Lock()
		opens++
		mu.Unlock()
		return os.Open(name)
	}
	return l, &opens
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CRASH DATE", "crash date"},
		{"LATITUDE", "latitude"},
		{"ON STREET NAME", "on street name"},
		{"NUMBER OF PERSONS INJURED", "number_of_persons_injured"},
		{"NUMBER OF PEDESTRIANS INJURED", "injured_pedestrians"},
		{"NUMBER OF CYCLIST INJURED", "injured_cyclists"},
		{"NUMBER OF MOTORIST INJURED", "injured_motorists"},
		{"NUMBER OF PERSONS KILLED", "number of persons killed"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeColumn(tt.in); got != tt.want {
				t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadSample(t *testing.T) {
	table := loadSample(t, 100000)

	if len(table.Records) != 7 {
		t.Fatalf("expected 7 records, got %d", len(table.Records))
	}
	if table.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", table.Dropped)
	}
	if table.RowLimit != 100000 {
		t.Errorf("RowLimit = %d, want 100000", table.RowLimit)
	}

	first := table.Records[0]
	want := time.Date(2021, 9, 11, 2, 39, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", first.Timestamp, want)
	}
	if first.Latitude != 40.667202 || first.Longitude != -73.8665 {
		t.Errorf("coordinates = (%v, %v)", first.Latitude, first.Longitude)
	}
	if first.PersonsInjured == nil || *first.PersonsInjured != 2 {
		t.Errorf("PersonsInjured = %v, want 2", first.PersonsInjured)
	}
	if first.MotoristsInjured == nil || *first.MotoristsInjured != 2 {
		t.Errorf("MotoristsInjured = %v, want 2", first.MotoristsInjured)
	}
	if first.OnStreetName == nil || *first.OnStreetName != "WHITESTONE EXPRESSWAY" {
		t.Errorf("OnStreetName = %v", first.OnStreetName)
	}

	// ISO date with seconds
	iso := table.Records[5]
	if want := time.Date(2021, 12, 15, 17, 5, 30, 0, time.UTC); !iso.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", iso.Timestamp, want)
	}

	// Empty cells stay unknown
	blank := table.Records[4]
	if blank.PersonsInjured != nil || blank.PedestriansInjured != nil {
		t.Errorf("expected nil injury counts, got %v / %v", blank.PersonsInjured, blank.PedestriansInjured)
	}
	if table.Records[2].OnStreetName != nil {
		t.Errorf("expected nil street, got %q", *table.Records[2].OnStreetName)
	}
}

func TestLoadKeepsSourceColumns(t *testing.T) {
	table := loadSample(t, 100)

	first := table.Records[0]
	want := map[string]string{
		"borough":  "BROOKLYN",
		"location": "(40.667202, -73.8665)",
	}
	if !reflect.DeepEqual(first.Extra, want) {
		t.Errorf("Extra = %v, want %v", first.Extra, want)
	}

	for i, rec := range table.Records {
		for _, col := range requiredColumns {
			if _, ok := rec.Extra[col]; ok {
				t.Errorf("record %d: typed column %q duplicated in Extra", i, col)
			}
		}
	}
}

func TestLoadRowLimit(t *testing.T) {
	tests := []struct {
		limit       int
		wantRecords int
		wantDropped int
	}{
		{0, 0, 0},
		{1, 1, 0},
		{3, 2, 1},
		{9, 7, 2},
		{50, 7, 2},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			table := loadSample(t, tt.limit)
			if len(table.Records) != tt.wantRecords {
				t.Errorf("limit %d: records = %d, want %d", tt.limit, len(table.Records), tt.wantRecords)
			}
			if table.Dropped != tt.wantDropped {
				t.Errorf("limit %d: dropped = %d, want %d", tt.limit, table.Dropped, tt.wantDropped)
			}
		})
	}
}

func TestLoadCoordinatesAlwaysPresent(t *testing.T) {
	table := loadSample(t, 100)
	for i, rec := range table.Records {
		if rec.Latitude == 0 || rec.Longitude == 0 {
			t.Errorf("record %d has zero coordinates: %+v", i, rec)
		}
	}
}

func TestLoadMemoized(t *testing.T) {
	l, opens := countingLoader(samplePath)

	first, err := l.Load(5)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := l.Load(5)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if *opens != 1 {
		t.Errorf("file opened %d times, want 1", *opens)
	}
	if first != second {
		t.Error("expected the memoized table to be returned")
	}

	if _, err := l.Load(6); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *opens != 2 {
		t.Errorf("file opened %d times after a new row limit, want 2", *opens)
	}
}

func TestLoadConcurrentSingleRead(t *testing.T) {
	l, opens := countingLoader(samplePath)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Load(100); err != nil {
				t.Errorf("Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if *opens != 1 {
		t.Errorf("file opened %d times, want 1", *opens)
	}
}

func TestLoadLimitsPastEndShareOneRead(t *testing.T) {
	l, opens := countingLoader(samplePath)

	var tables []*Table
	for _, limit := range []int{50, 1000, 9, 123456} {
		table, err := l.Load(limit)
		if err != nil {
			t.Fatalf("Load(%d) failed: %v", limit, err)
		}
		if table.RowLimit != limit {
			t.Errorf("RowLimit = %d, want %d", table.RowLimit, limit)
		}
		if len(table.Records) != 7 || table.Dropped != 2 {
			t.Errorf("Load(%d): %d records, %d dropped", limit, len(table.Records), table.Dropped)
		}
		tables = append(tables, table)
	}

	if *opens != 1 {
		t.Errorf("file opened %d times, want 1", *opens)
	}
	if l.memo.ItemCount() != 1 {
		t.Errorf("memo holds %d tables, want 1", l.memo.ItemCount())
	}
	if &tables[0].Records[0] != &tables[3].Records[0] {
		t.Error("limits past the end of file should share records")
	}

	// Shorter than the file still needs its own prefix.
	table, err := l.Load(8)
	if err != nil {
		t.Fatalf("Load(8) failed: %v", err)
	}
	if len(table.Records) != 6 || table.Exhausted {
		t.Errorf("Load(8): %d records, exhausted %v", len(table.Records), table.Exhausted)
	}
	if *opens != 2 {
		t.Errorf("file opened %d times after a short limit, want 2", *opens)
	}
}

func TestLoadMissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "missing.csv"))
	if _, err := l.Load(10); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadErrorNotMemoized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.csv")
	l := NewLoader(path)

	if _, err := l.Load(10); err == nil {
		t.Fatal("expected error before the file exists")
	}

	content, err := os.ReadFile(samplePath)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	table, err := l.Load(10)
	if err != nil {
		t.Fatalf("Load after file appeared failed: %v", err)
	}
	if len(table.Records) != 7 {
		t.Errorf("records = %d, want 7", len(table.Records))
	}
}

func TestLoadNegativeRowLimit(t *testing.T) {
	_, err := NewLoader(samplePath).Load(-1)
	if !errors.Is(err, ErrInvalidControl) {
		t.Errorf("expected ErrInvalidControl, got %v", err)
	}
}

func TestParseCollisionsMalformed(t *testing.T) {
	const header = "CRASH DATE,CRASH TIME,LATITUDE,LONGITUDE,ON STREET NAME,NUMBER OF PERSONS INJURED,NUMBER OF PEDESTRIANS INJURED,NUMBER OF CYCLIST INJURED,NUMBER OF MOTORIST INJURED\n"

	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"missing column", "CRASH DATE,CRASH TIME,LATITUDE\n09/11/2021,2:39,40.7\n"},
		{"bad latitude", header + "09/11/2021,2:39,north,-73.9,A,1,0,0,1\n"},
		{"bad date", header + "2021/13/45,2:39,40.7,-73.9,A,1,0,0,1\n"},
		{"bad time", header + "09/11/2021,25:99,40.7,-73.9,A,1,0,0,1\n"},
		{"bad count", header + "09/11/2021,2:39,40.7,-73.9,A,one,0,0,1\n"},
		{"fractional count", header + "09/11/2021,2:39,40.7,-73.9,A,1.5,0,0,1\n"},
		{"ragged row", header + "09/11/2021,2:39,40.7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCollisions(strings.NewReader(tt.content), 100)
			if !errors.Is(err, ErrMalformedSource) {
				t.Errorf("expected ErrMalformedSource, got %v", err)
			}
		})
	}
}

func TestParseCollisionsLenientValues(t *testing.T) {
	content := "\ufeffCRASH DATE,CRASH TIME,LATITUDE,LONGITUDE,ON STREET NAME,NUMBER OF PERSONS INJURED,NUMBER OF PEDESTRIANS INJURED,NUMBER OF CYCLIST INJURED,NUMBER OF MOTORIST INJURED\n" +
		"2021-09-11T00:00:00.000,14:05,40.7,-73.9,A,2.0,0,0,2\n" +
		"09/11/2021,,40.7,-73.9,A,1,0,0,1\n"

	// The second row has no crash time; a limit of one never reaches it.
	table, err := ParseCollisions(strings.NewReader(content), 1)
	if err != nil {
		t.Fatalf("ParseCollisions failed: %v", err)
	}
	if len(table.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(table.Records))
	}
	rec := table.Records[0]
	if rec.PersonsInjured == nil || *rec.PersonsInjured != 2 {
		t.Errorf("PersonsInjured = %v, want 2", rec.PersonsInjured)
	}
	if want := time.Date(2021, 9, 11, 14, 5, 0, 0, time.UTC); !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, want)
	}
}
