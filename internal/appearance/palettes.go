package appearance

import (
	"strings"
	"sync"

	"github.com/soaringjerry/PainMap/internal/dial"
)

const (
	TrafficLightName = "traffic"
	FacesName        = "faces"
)

// TrafficLight is the knob palette: green at rest, yellow midway, red at max.
func TrafficLight() *Palette { return trafficLight() }

var trafficLight = sync.OnceValue(func() *Palette {
	return mustPalette(TrafficLightName, Evenly(dial.DefaultRange, []ControlPoint{
		{Name: "none", Color: RGB{74, 222, 128}},
		{Name: "moderate", Color: RGB{250, 204, 21}},
		{Name: "severe", Color: RGB{239, 68, 68}},
	}))
})

// Face artwork is drawn in a 90x90 box.
const FaceBox = 90.0

const (
	eyeOpenL   = "M28 45C24.687 45 22 42.314 22 39C22 35.686 24.687 33 28 33C31.313 33 34 35.686 34 39C34 42.314 31.313 45 28 45Z"
	eyeOpenR   = "M62 45C58.687 45 56 42.314 56 39C56 35.686 58.687 33 62 33C65.313 33 68 35.686 68 39C68 42.314 65.313 45 62 45Z"
	eyeUpperL  = "M28 33C24.687 33 22 35.686 22 39H34C34 35.686 31.313 33 28 33Z"
	eyeUpperR  = "M62 33C58.687 33 56 35.686 56 39H68C68 35.686 65.313 33 62 33Z"
	eyeLowerL  = "M28 45C24.687 45 22 42.314 22 39H34C34 42.314 31.313 45 28 45Z"
	eyeLowerR  = "M62 45C58.687 45 56 42.314 56 39H68C68 42.314 65.313 45 62 45Z"
	eyeCrossL  = "M27.657 41.485L24.829 44.314L22 41.485L24.829 38.656L22 35.829L24.829 33L27.657 35.829L30.485 33L33.313 35.829L30.485 38.657L33.313 41.486L30.485 44.315Z"
	eyeCrossR  = "M67.656 41.829L64.828 44.657L62 41.829L59.172 44.657L56.344 41.829L59.172 39L56.344 36.171L59.172 33.343L62 36.171L64.828 33.343L67.656 36.171L64.828 39Z"
	mouthSmile = "M34 56C34 62.075 38.925 67 45 67C51.075 67 56 62.075 56 56H34Z"
	mouthFlat  = "M35 60H55V64H35V60Z"
	mouthFrown = "M34 67C34 60.925 38.925 56 45 56C51.075 56 56 60.925 56 67H34Z"
	mouthTeeth = "M60 64H56V68H52V64H48V68H44V64H40V68H36V64H32V60H36V56H40V60H44V56H48V60H52V56H56V60H60V64Z"
)

func face(name string, c RGB, leftEye, rightEye, mouth string) ControlPoint {
	return ControlPoint{Name: name, Color: c, Features: []Feature{
		{Name: "left_eye", Path: leftEye},
		{Name: "right_eye", Path: rightEye},
		{Name: "mouth", Path: mouth},
	}}
}

// Faces is the toggle palette: six faces from content to distressed.
func Faces() *Palette { return faces() }

var faces = sync.OnceValue(func() *Palette {
	return mustPalette(FacesName, Evenly(dial.DefaultRange, []ControlPoint{
		face("content", RGB{60, 140, 77}, eyeUpperL, eyeUpperR, mouthSmile),
		face("fine", RGB{142, 186, 63}, eyeOpenL, eyeOpenR, mouthSmile),
		face("uneasy", RGB{234, 235, 46}, eyeOpenL, eyeOpenR, mouthFlat),
		face("sore", RGB{228, 171, 29}, eyeUpperL, eyeUpperR, mouthFlat),
		face("hurting", RGB{230, 118, 14}, eyeLowerL, eyeLowerR, mouthFrown),
		face("agony", RGB{201, 17, 17}, eyeCrossL, eyeCrossR, mouthTeeth),
	}))
})

// ForStyle pairs each dial style with its palette.
func ForStyle(s dial.Style) *Palette {
	if s == dial.StyleLinear {
		return Faces()
	}
	return TrafficLight()
}

// ByName looks a built-in palette up; ok is false for unknown names.
func ByName(name string) (*Palette, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case TrafficLightName, "":
		return TrafficLight(), true
	case FacesName:
		return Faces(), true
	}
	return nil, false
}

func mustPalette(name string, pts []ControlPoint) *Palette {
	p, err := NewPalette(name, pts, nil)
	if err != nil {
		panic(err)
	}
	return p
}
