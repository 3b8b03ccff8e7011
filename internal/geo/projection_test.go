package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKrovakForward_ReferencePoint(t *testing.T) {
	// Worked example for the Krovak method on the Bessel ellipsoid.
	phi := deg(50, 12, 32.442)
	lam := deg(16, 50, 59.179)

	xp, yp := sjtsk.forward(phi, lam)
	assert.InDelta(t, 1050538.63, xp, 0.01)
	assert.InDelta(t, 568991.00, yp, 0.01)

	gotPhi, gotLam := sjtsk.inverse(xp, yp)
	assert.InDelta(t, phi, gotPhi, 1e-10)
	assert.InDelta(t, lam, gotLam, 1e-10)
}

func TestKrovakToWGS84(t *testing.T) {
	tests := []struct {
		name        string
		east, north float64
		lat, lon    float64
	}{
		{"Praha", -742000, -1043000, 50.0886, 14.4324},
		{"Brno", -598000, -1160500, 49.1975, 16.6098},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := KrovakToWGS84(tt.east, tt.north)
			assert.InDelta(t, tt.lat, lat, 1e-3)
			assert.InDelta(t, tt.lon, lon, 1e-3)
		})
	}
}

func TestWGS84ToKrovak_Roundtrip(t *testing.T) {
	for _, p := range [][2]float64{{-742000, -1043000}, {-598000, -1160500}, {-870000, -1100000}, {-460000, -1120000}} {
		lat, lon := KrovakToWGS84(p[0], p[1])
		east, north := WGS84ToKrovak(lat, lon)
		assert.InDelta(t, p[0], east, 0.05)
		assert.InDelta(t, p[1], north, 0.05)
	}
}

func TestWebMercator(t *testing.T) {
	x, y := ToWebMercator(0, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	x, _ = ToWebMercator(0, 180)
	assert.InDelta(t, math.Pi*earthRadius, x, 1e-6)

	lat, lon := FromWebMercator(ToWebMercator(50.0886, 14.4324))
	assert.InDelta(t, 50.0886, lat, 1e-9)
	assert.InDelta(t, 14.4324, lon, 1e-9)
}

func TestEllipsoidECEFRoundtrip(t *testing.T) {
	phi, lam := deg(49, 10, 0), deg(16, 36, 0)
	x, y, z := bessel1841.toECEF(phi, lam, 250)
	gotPhi, gotLam, h := bessel1841.fromECEF(x, y, z)
	assert.InDelta(t, phi, gotPhi, 1e-11)
	assert.InDelta(t, lam, gotLam, 1e-11)
	assert.InDelta(t, 250, h, 1e-4)
}
