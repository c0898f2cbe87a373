package tcx

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// trackpoints nest as Activities/Activity/Lap/Track/Trackpoint below the document root.
var samplePath = []Tag{TagActivities, TagActivity, TagLap, TagTrack, TagTrackpoint}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// ParseDocument reads a TCX document and returns its root element.
func ParseDocument(r io.Reader) (*etree.Element, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse tcx document: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse tcx document: no root element")
	}
	return root, nil
}

// Extract flattens all trackpoints below root into one ordered sequence.
// Samples rejected by filter are dropped before consecutive duplicates are
// removed. A nil filter keeps everything.
func Extract(root *etree.Element, filter Filter) ([]Trackpoint, error) {
	if root == nil {
		return nil, nil
	}

	nodes := []*etree.Element{root}
	for _, tag := range samplePath {
		nodes = childrenTagged(nodes, tag)
	}

	points := make([]Trackpoint, 0, len(nodes))
	for i, node := range nodes {
		tp, err := parseTrackpoint(node, i)
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter(tp) {
			continue
		}
		points = append(points, tp)
	}
	return Dedup(points), nil
}

// ChildText descends path from e, matching local tag names only, and returns
// the text of the final element. ok is false when any hop is missing.
func ChildText(e *etree.Element, path []Tag) (text string, ok bool) {
	cur := e
	for _, tag := range path {
		cur = firstChild(cur, tag)
		if cur == nil {
			return "", false
		}
	}
	return cur.Text(), true
}

func childrenTagged(parents []*etree.Element, tag Tag) []*etree.Element {
	var out []*etree.Element
	for _, p := range parents {
		for _, c := range p.ChildElements() {
			if c.Tag == string(tag) {
				out = append(out, c)
			}
		}
	}
	return out
}

func firstChild(e *etree.Element, tag Tag) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if c.Tag == string(tag) {
			return c
		}
	}
	return nil
}

func parseTrackpoint(node *etree.Element, index int) (Trackpoint, error) {
	timePath := []Tag{TagTime}
	raw, ok := ChildText(node, timePath)
	if !ok {
		return Trackpoint{}, &FieldError{Kind: ErrMissingRequiredField, Field: "time", Sample: index, Path: timePath}
	}
	ts, err := parseTime(raw)
	if err != nil {
		return Trackpoint{}, &FieldError{Kind: ErrMalformedValue, Field: "time", Sample: index, Path: timePath, Raw: raw}
	}

	tp := Trackpoint{Time: ts}
	for _, f := range Fields {
		for _, path := range f.Paths() {
			raw, ok := ChildText(node, path)
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return Trackpoint{}, &FieldError{Kind: ErrMalformedValue, Field: f.String(), Sample: index, Path: path, Raw: raw}
			}
			tp.set(f, v)
			break
		}
	}
	return tp, nil
}

func parseTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	var firstErr error
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
