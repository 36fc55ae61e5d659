package bodymap

// Region is a closed rectangle on the 0-100 silhouette grid, origin top-left.
type Region struct {
	Name string  `json:"name"`
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Contains reports whether (x, y) lies inside the region, bounds inclusive.
func (r Region) Contains(x, y float64) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Center returns the midpoint of the rectangle.
func (r Region) Center() (float64, float64) {
	return (r.XMin + r.XMax) / 2, (r.YMin + r.YMax) / 2
}

// canonicalRegions is shared by both silhouette variants. Zones overlap on
// purpose (e.g. Upper Chest / Left Chest); the classifier resolves overlaps
// by center distance. The silhouettes are front views, so there are no
// separate back zones.
var canonicalRegions = []Region{
	// Head & Neck
	{Name: "Head", XMin: 38, XMax: 62, YMin: 0, YMax: 12},
	{Name: "Neck", XMin: 42, XMax: 58, YMin: 12, YMax: 16},

	// Shoulders
	{Name: "Left Shoulder", XMin: 28, XMax: 42, YMin: 14, YMax: 20},
	{Name: "Right Shoulder", XMin: 58, XMax: 72, YMin: 14, YMax: 20},

	// Arms
	{Name: "Left Upper Arm", XMin: 20, XMax: 32, YMin: 20, YMax: 32},
	{Name: "Right Upper Arm", XMin: 68, XMax: 80, YMin: 20, YMax: 32},
	{Name: "Left Elbow", XMin: 17, XMax: 28, YMin: 32, YMax: 37},
	{Name: "Right Elbow", XMin: 72, XMax: 83, YMin: 32, YMax: 37},
	{Name: "Left Forearm", XMin: 14, XMax: 26, YMin: 37, YMax: 46},
	{Name: "Right Forearm", XMin: 74, XMax: 86, YMin: 37, YMax: 46},
	{Name: "Left Hand", XMin: 10, XMax: 22, YMin: 46, YMax: 54},
	{Name: "Right Hand", XMin: 78, XMax: 90, YMin: 46, YMax: 54},

	// Chest
	{Name: "Upper Chest", XMin: 38, XMax: 62, YMin: 16, YMax: 24},
	{Name: "Left Chest", XMin: 32, XMax: 48, YMin: 20, YMax: 30},
	{Name: "Right Chest", XMin: 52, XMax: 68, YMin: 20, YMax: 30},

	// Abdomen
	{Name: "Upper Abdomen", XMin: 36, XMax: 64, YMin: 30, YMax: 38},
	{Name: "Lower Abdomen", XMin: 36, XMax: 64, YMin: 38, YMax: 46},

	// Hips / Pelvis
	{Name: "Left Hip", XMin: 32, XMax: 46, YMin: 44, YMax: 52},
	{Name: "Right Hip", XMin: 54, XMax: 68, YMin: 44, YMax: 52},
	{Name: "Pelvis", XMin: 40, XMax: 60, YMin: 46, YMax: 52},

	// Legs
	{Name: "Left Thigh", XMin: 32, XMax: 48, YMin: 52, YMax: 65},
	{Name: "Right Thigh", XMin: 52, XMax: 68, YMin: 52, YMax: 65},
	{Name: "Left Knee", XMin: 34, XMax: 48, YMin: 65, YMax: 72},
	{Name: "Right Knee", XMin: 52, XMax: 66, YMin: 65, YMax: 72},
	{Name: "Left Shin", XMin: 34, XMax: 48, YMin: 72, YMax: 85},
	{Name: "Right Shin", XMin: 52, XMax: 66, YMin: 72, YMax: 85},
	{Name: "Left Ankle", XMin: 36, XMax: 46, YMin: 85, YMax: 90},
	{Name: "Right Ankle", XMin: 54, XMax: 64, YMin: 85, YMax: 90},
	{Name: "Left Foot", XMin: 32, XMax: 46, YMin: 90, YMax: 100},
	{Name: "Right Foot", XMin: 54, XMax: 68, YMin: 90, YMax: 100},
}

// CanonicalRegions returns a copy of the built-in region table.
func CanonicalRegions() []Region {
	out := make([]Region, len(canonicalRegions))
	copy(out, canonicalRegions)
	return out
}
