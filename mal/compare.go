package mal

import (
	"math"
	"strings"
	"sync/atomic"
)

// funSeq hands out creation numbers so callables have an identity order.
var funSeq atomic.Uint64

func newFun(f *Fun) *Fun {
	f.id = funSeq.Add(1)
	return f
}

// rank groups tags for ordering. Lists and vectors share a rank because they
// compare element-wise with each other.
func rank(t ValueTag) int {
	switch t {
	case VTVector:
		return int(VTList)
	default:
		return int(t)
	}
}

// Equal reports structural equality. Lists and vectors holding equal elements
// are equal; an int is never equal to a float; callables are equal only to
// themselves.
func Equal(a, b Value) bool {
	if rank(a.Tag) != rank(b.Tag) {
		return false
	}
	switch a.Tag {
	case VTFun:
		return a.Data.(*Fun) == b.Data.(*Fun)
	case VTMap:
		am, bm := a.Data.(*MapObject), b.Data.(*MapObject)
		if am == bm {
			return true
		}
		ae, be := am.Entries(), bm.Entries()
		if len(ae) != len(be) {
			return false
		}
		for i := range ae {
			if !Equal(ae[i].Key, be[i].Key) || !Equal(ae[i].Val, be[i].Val) {
				return false
			}
		}
		return true
	}
	return Compare(a, b) == 0
}

// Compare is a total order over values: first by kind, then by content.
// Floats order NaN above every other float and equal to itself. Sequences
// compare lexicographically, maps by their sorted entries, callables by
// creation order.
func Compare(a, b Value) int {
	if ra, rb := rank(a.Tag), rank(b.Tag); ra != rb {
		return cmpInt(int64(ra), int64(rb))
	}
	switch a.Tag {
	case VTNil:
		return 0
	case VTBool:
		x, y := a.Data.(bool), b.Data.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case VTInt:
		return cmpInt(a.Data.(int64), b.Data.(int64))
	case VTFloat:
		return cmpFloat(a.Data.(float64), b.Data.(float64))
	case VTStr, VTKeyword, VTSymbol:
		return strings.Compare(a.Data.(string), b.Data.(string))
	case VTList, VTVector:
		xs, _ := a.Seq()
		ys, _ := b.Seq()
		for i := 0; i < len(xs) && i < len(ys); i++ {
			if c := Compare(xs[i], ys[i]); c != 0 {
				return c
			}
		}
		return cmpInt(int64(len(xs)), int64(len(ys)))
	case VTMap:
		xs := a.Data.(*MapObject).Entries()
		ys := b.Data.(*MapObject).Entries()
		for i := 0; i < len(xs) && i < len(ys); i++ {
			if c := Compare(xs[i].Key, ys[i].Key); c != 0 {
				return c
			}
			if c := Compare(xs[i].Val, ys[i].Val); c != 0 {
				return c
			}
		}
		return cmpInt(int64(len(xs)), int64(len(ys)))
	case VTFun:
		x, y := a.Data.(*Fun), b.Data.(*Fun)
		if x == y {
			return 0
		}
		if x.id < y.id {
			return -1
		}
		return 1
	}
	return 0
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func cmpFloat(x, y float64) int {
	xn, yn := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xn && yn:
		return 0
	case xn:
		return 1
	case yn:
		return -1
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
