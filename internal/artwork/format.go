package artwork

import "strconv"

func fmtIndexLabel(label string, index int) string {
	return label + " (" + strconv.Itoa(index) + ")"
}

func fmtDims(label string, w, h int) string {
	return label + " " + strconv.Itoa(w) + "x" + strconv.Itoa(h)
}
