package tcx

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
)

const sampleTCX = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2" xmlns:ns3="http://www.garmin.com/xmlschemas/ActivityExtension/v2">
  <Activities>
    <Activity Sport="Biking">
      <Id>2023-05-14T08:00:00Z</Id>
      <Lap StartTime="2023-05-14T08:00:00Z">
        <TotalTimeSeconds>2</TotalTimeSeconds>
        <Track>
          <Trackpoint>
            <Time>2023-05-14T08:00:00Z</Time>
            <Position>
              <LatitudeDegrees>48.640970</LatitudeDegrees>
              <LongitudeDegrees>9.0</LongitudeDegrees>
            </Position>
            <AltitudeMeters>450.0</AltitudeMeters>
            <DistanceMeters>0.0</DistanceMeters>
            <HeartRateBpm><Value>100</Value></HeartRateBpm>
            <Cadence>85</Cadence>
            <Extensions>
              <ns3:TPX>
                <ns3:Speed>5.5</ns3:Speed>
                <ns3:Watts>210</ns3:Watts>
                <ns3:RunCadence>90</ns3:RunCadence>
              </ns3:TPX>
            </Extensions>
          </Trackpoint>
          <Trackpoint>
            <Time>2023-05-14T08:00:01.000Z</Time>
            <AltitudeMeters>451.5</AltitudeMeters>
            <DistanceMeters>5.5</DistanceMeters>
            <Extensions>
              <ns3:TPX>
                <ns3:RunCadence>88</ns3:RunCadence>
              </ns3:TPX>
            </Extensions>
          </Trackpoint>
        </Track>
      </Lap>
      <Lap StartTime="2023-05-14T08:00:01Z">
        <Track>
          <Trackpoint>
            <Time>2023-05-14T08:00:01Z</Time>
            <AltitudeMeters>451.5</AltitudeMeters>
            <DistanceMeters>5.5</DistanceMeters>
            <Extensions>
              <ns3:TPX>
                <ns3:RunCadence>88</ns3:RunCadence>
              </ns3:TPX>
            </Extensions>
          </Trackpoint>
          <Trackpoint>
            <Time>2023-05-14T08:00:02Z</Time>
            <DistanceMeters>11.0</DistanceMeters>
            <AnotherTag>will do no harm</AnotherTag>
          </Trackpoint>
        </Track>
        <Trackpoint>
          <Time>2023-05-14T09:00:00Z</Time>
        </Trackpoint>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

func f64(v float64) *float64 { return &v }

func mustRoot(t *testing.T, doc string) *etree.Element {
	t.Helper()
	root, err := ParseDocument(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return root
}

func TestExtractFlattensLapsAndDropsBoundaryDuplicates(t *testing.T) {
	root := mustRoot(t, sampleTCX)

	got, err := Extract(root, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	base := time.Date(2023, 5, 14, 8, 0, 0, 0, time.UTC)
	want := []Trackpoint{
		{
			Time:      base,
			Latitude:  f64(48.640970),
			Longitude: f64(9.0),
			Altitude:  f64(450),
			Distance:  f64(0),
			HeartRate: f64(100),
			Cadence:   f64(85),
			Speed:     f64(5.5),
			Power:     f64(210),
		},
		{
			Time:     base.Add(time.Second),
			Altitude: f64(451.5),
			Distance: f64(5.5),
			Cadence:  f64(88),
		},
		{
			Time:     base.Add(2 * time.Second),
			Distance: f64(11),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	root := mustRoot(t, sampleTCX)
	first, err := Extract(root, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := Extract(mustRoot(t, sampleTCX), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated extraction differs:\n%s", diff)
	}
}

func TestExtractFiltersBeforeDedup(t *testing.T) {
	doc := wrapTrackpoints(
		tp("2023-05-14T08:00:00Z", "<AltitudeMeters>10</AltitudeMeters><DistanceMeters>0</DistanceMeters>"),
		tp("2023-05-14T08:00:00Z", "<DistanceMeters>0</DistanceMeters>"),
		tp("2023-05-14T08:00:00Z", "<AltitudeMeters>10</AltitudeMeters><DistanceMeters>0</DistanceMeters>"),
	)

	got, err := Extract(mustRoot(t, doc), Require(Altitude, Distance))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected filtered duplicates to collapse to 1 point, got %d", len(got))
	}

	all, err := Extract(mustRoot(t, doc), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected non-consecutive duplicates to survive without filter, got %d", len(all))
	}
}

func TestExtractCadenceFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{name: "primary wins", body: "<Cadence>80</Cadence><Extensions><TPX><RunCadence>95</RunCadence></TPX></Extensions>", want: 80},
		{name: "extension fallback", body: "<Extensions><TPX><RunCadence>95</RunCadence></TPX></Extensions>", want: 95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(mustRoot(t, wrapTrackpoints(tp("2023-05-14T08:00:00Z", tt.body))), nil)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if len(got) != 1 || got[0].Cadence == nil || *got[0].Cadence != tt.want {
				t.Fatalf("unexpected cadence: %+v", got)
			}
		})
	}
}

func TestExtractMissingTime(t *testing.T) {
	doc := wrapTrackpoints(
		tp("2023-05-14T08:00:00Z", ""),
		"<Trackpoint><DistanceMeters>3</DistanceMeters></Trackpoint>",
	)
	_, err := Extract(mustRoot(t, doc), nil)
	if !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Sample != 1 || fe.Field != "time" {
		t.Fatalf("unexpected error detail: %#v", err)
	}
}

func TestExtractMalformedValue(t *testing.T) {
	doc := wrapTrackpoints(tp("2023-05-14T08:00:00Z", "<HeartRateBpm><Value>fast</Value></HeartRateBpm>"))
	_, err := Extract(mustRoot(t, doc), nil)
	if !errors.Is(err, ErrMalformedValue) {
		t.Fatalf("expected ErrMalformedValue, got %v", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "heartrate" || fe.Raw != "fast" {
		t.Fatalf("unexpected error detail: %#v", err)
	}
	if !strings.Contains(err.Error(), "HeartRateBpm/Value") {
		t.Fatalf("error should name the path: %v", err)
	}

	_, err = Extract(mustRoot(t, wrapTrackpoints(tp("yesterday", ""))), nil)
	if !errors.Is(err, ErrMalformedValue) {
		t.Fatalf("expected ErrMalformedValue for bad time, got %v", err)
	}
}

func TestChildTextIgnoresNamespace(t *testing.T) {
	root := mustRoot(t, `<Root xmlns="arbitrary" xmlns:x="other"><Extensions><x:TPX><x:Speed>42.0</x:Speed></x:TPX></Extensions></Root>`)

	text, ok := ChildText(root, []Tag{TagExtensions, TagTPX, TagSpeed})
	if !ok || text != "42.0" {
		t.Fatalf("ChildText = %q, %v", text, ok)
	}
	if _, ok := ChildText(root, []Tag{TagExtensions, TagTPX, TagWatts}); ok {
		t.Fatal("expected missing hop to report absence")
	}
}

func TestParseTimeLayouts(t *testing.T) {
	want := time.Date(2022, 12, 31, 23, 59, 59, 0, time.UTC)
	for _, raw := range []string{
		"2022-12-31T23:59:59Z",
		"2022-12-31T23:59:59.000Z",
		"2022-12-31T23:59:59+00:00",
		"2022-12-31 23:59:59 UTC",
		" 2022-12-31T23:59:59Z\n",
	} {
		got, err := parseTime(raw)
		if err != nil {
			t.Fatalf("parseTime(%q): %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parseTime(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestDedupKeepsNonConsecutiveRepeats(t *testing.T) {
	a := Trackpoint{Time: time.Unix(0, 0).UTC(), Distance: f64(1)}
	b := Trackpoint{Time: time.Unix(1, 0).UTC(), Distance: f64(2)}
	got := Dedup([]Trackpoint{a, a, b, a, a, a})
	if diff := cmp.Diff([]Trackpoint{a, b, a}, got); diff != "" {
		t.Fatalf("Dedup mismatch (-want +got):\n%s", diff)
	}
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(strings.ToUpper(f.String()))
		if err != nil || got != f {
			t.Fatalf("ParseField(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseField("temperature"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func tp(ts, body string) string {
	return "<Trackpoint><Time>" + ts + "</Time>" + body + "</Trackpoint>"
}

func wrapTrackpoints(points ...string) string {
	return `<TrainingCenterDatabase><Activities><Activity><Lap><Track>` +
		strings.Join(points, "") +
		`</Track></Lap></Activity></Activities></TrainingCenterDatabase>`
}
