package timeline

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"

	"go-measure/debug"
)

// PersistedState is the on-disk shape of a timeline:
//
//	<measure firstMeasure="0" denom="4" num="4"/>
//
// for a uniform timeline, or one <timesig num denom measure/> child per change.
type PersistedState struct {
	XMLName      xml.Name           `xml:"measure"`
	FirstMeasure *int               `xml:"firstMeasure,attr"`
	Denom        *int               `xml:"denom,attr"`
	Num          *int               `xml:"num,attr"`
	TimeSigs     []PersistedTimeSig `xml:"timesig"`
}

// PersistedTimeSig is one <timesig> element.
type PersistedTimeSig struct {
	Num     *int `xml:"num,attr"`
	Denom   *int `xml:"denom,attr"`
	Measure *int `xml:"measure,attr"`
}

// State captures the persisted form of the timeline.
func (t *Timeline) State() PersistedState {
	p := PersistedState{FirstMeasure: intPtr(t.firstMeasure)}
	if t.IsUniformLength() {
		p.Denom = intPtr(t.changes[0].Denom)
		p.Num = intPtr(t.changes[0].Num)
		return p
	}
	for _, c := range t.changes {
		p.TimeSigs = append(p.TimeSigs, PersistedTimeSig{
			Num:     intPtr(c.Num),
			Denom:   intPtr(c.Denom),
			Measure: intPtr(c.Measure),
		})
	}
	return p
}

// Restore replaces first measure and time signatures with a persisted state.
// Missing or invalid values are logged and defaulted; a <timesig> lacking an
// attribute or carrying an invalid signature is skipped. The presence of any
// <timesig> child selects variable-length mode.
func (t *Timeline) Restore(p PersistedState) {
	tx := t.Begin()
	defer tx.Commit()

	switch {
	case p.FirstMeasure == nil:
		debug.Log("persist", "missing first measure, using 0")
		t.firstMeasure = 0
	case *p.FirstMeasure < 0:
		debug.Log("persist", "wrong first measure %d, using 0", *p.FirstMeasure)
		t.firstMeasure = 0
	default:
		t.firstMeasure = *p.FirstMeasure
	}

	t.changes = defaultChanges()
	t.selectedSig = 0
	if p.Num != nil {
		if *p.Num < 1 || *p.Num > 64 {
			debug.Log("persist", "wrong numerator %d, using 4", *p.Num)
		} else {
			t.changes[0].Num = *p.Num
		}
	}
	if p.Denom != nil {
		if !ValidTimeSignature(4, *p.Denom) {
			debug.Log("persist", "wrong denominator %d, using 4", *p.Denom)
		} else {
			t.changes[0].Denom = *p.Denom
		}
	}

	t.importing = true
	defer func() { t.importing = false }()
	for _, ts := range p.TimeSigs {
		if ts.Num == nil || ts.Denom == nil || ts.Measure == nil {
			debug.Log("persist", "incomplete time signature element, ignored")
			continue
		}
		if *ts.Measure < 0 {
			debug.Log("persist", "time signature at negative measure %d, ignored", *ts.Measure)
			continue
		}
		if err := t.SetTimeSignatureAt(*ts.Measure, *ts.Num, *ts.Denom); err != nil {
			debug.Log("persist", "time signature %d/%d at measure %d ignored: %v", *ts.Num, *ts.Denom, *ts.Measure, err)
		}
	}
	t.expanded = len(p.TimeSigs) > 0
	t.selectedSig = 0
}

// WriteXML encodes the persisted state.
func (t *Timeline) WriteXML(w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(t.State()); err != nil {
		return errors.Wrap(err, "encoding measure element")
	}
	return errors.Wrap(enc.Flush(), "flushing measure element")
}

// ReadXML decodes a <measure> element and restores it.
func (t *Timeline) ReadXML(r io.Reader) error {
	var p PersistedState
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		return errors.Wrap(err, "decoding measure element")
	}
	t.Restore(p)
	return nil
}

func intPtr(v int) *int {
	return &v
}
