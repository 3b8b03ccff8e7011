package geo

import "math"

// ellipsoid is a reference ellipsoid given by its semi-major axis and first
// eccentricity squared.
type ellipsoid struct {
	a, e2 float64
}

func newEllipsoid(a, invf float64) ellipsoid {
	f := 1 / invf
	return ellipsoid{a: a, e2: 2*f - f*f}
}

var (
	bessel1841 = newEllipsoid(6377397.155, 299.1528128)
	wgs84      = newEllipsoid(6378137, 298.257223563)
)

// toECEF converts geodetic coordinates in radians to geocentric cartesian ones.
func (el ellipsoid) toECEF(phi, lam, h float64) (x, y, z float64) {
	sinPhi := math.Sin(phi)
	n := el.a / math.Sqrt(1-el.e2*sinPhi*sinPhi)
	x = (n + h) * math.Cos(phi) * math.Cos(lam)
	y = (n + h) * math.Cos(phi) * math.Sin(lam)
	z = (n*(1-el.e2) + h) * sinPhi
	return x, y, z
}

// fromECEF is the inverse of toECEF. Latitude is found by fixed-point iteration,
// which converges to well below a millimetre in a handful of steps.
func (el ellipsoid) fromECEF(x, y, z float64) (phi, lam, h float64) {
	lam = math.Atan2(y, x)
	p := math.Hypot(x, y)
	phi = math.Atan2(z, p*(1-el.e2))
	for range 10 {
		sinPhi := math.Sin(phi)
		n := el.a / math.Sqrt(1-el.e2*sinPhi*sinPhi)
		h = p/math.Cos(phi) - n
		next := math.Atan2(z, p*(1-el.e2*n/(n+h)))
		if math.Abs(next-phi) < 1e-14 {
			phi = next
			break
		}
		phi = next
	}
	return phi, lam, h
}

// helmert is a seven-parameter datum shift in the position vector convention.
// Rotations are in radians, scale is unitless (ppm * 1e-6).
type helmert struct {
	tx, ty, tz float64
	rx, ry, rz float64
	s          float64
}

const arcsec = math.Pi / 180 / 3600

// sjtskToWGS84 shifts S-JTSK (Bessel 1841) to WGS84.
var sjtskToWGS84 = helmert{
	tx: 570.8, ty: 85.7, tz: 462.8,
	rx: 4.998 * arcsec, ry: 1.587 * arcsec, rz: 5.261 * arcsec,
	s: 3.56e-6,
}

func (t helmert) apply(x, y, z float64) (float64, float64, float64) {
	k := 1 + t.s
	return t.tx + k*(x-t.rz*y+t.ry*z),
		t.ty + k*(t.rz*x+y-t.rx*z),
		t.tz + k*(-t.ry*x+t.rx*y+z)
}

// inverse returns the reverse shift. Negating the parameters is exact to first
// order, which for S-JTSK leaves residuals of a few millimetres.
func (t helmert) inverse() helmert {
	return helmert{tx: -t.tx, ty: -t.ty, tz: -t.tz, rx: -t.rx, ry: -t.ry, rz: -t.rz, s: -t.s}
}

// krovak holds the derived constants of the Krovak oblique conformal conic
// projection on the Bessel ellipsoid.
type krovak struct {
	e      float64
	lam0   float64
	alphaC float64
	phiP   float64
	b      float64
	t0     float64
	n      float64
	r0     float64
}

func deg(d, m, s float64) float64 {
	return (d + m/60 + s/3600) * math.Pi / 180
}

func newKrovak() krovak {
	el := bessel1841
	e := math.Sqrt(el.e2)
	phiC := deg(49, 30, 0)
	phiP := deg(78, 30, 0)
	alphaC := deg(30, 17, 17.30311)
	const kP = 0.9999

	sinC := math.Sin(phiC)
	a := el.a * math.Sqrt(1-el.e2) / (1 - el.e2*sinC*sinC)
	b := math.Sqrt(1 + el.e2*math.Pow(math.Cos(phiC), 4)/(1-el.e2))
	gamma0 := math.Asin(sinC / b)
	t0 := math.Tan(math.Pi/4+gamma0/2) *
		math.Pow((1+e*sinC)/(1-e*sinC), e*b/2) /
		math.Pow(math.Tan(math.Pi/4+phiC/2), b)

	return krovak{
		e:      e,
		lam0:   deg(24, 50, 0), // 42°30' east of Ferro
		alphaC: alphaC,
		phiP:   phiP,
		b:      b,
		t0:     t0,
		n:      math.Sin(phiP),
		r0:     kP * a / math.Tan(phiP),
	}
}

var sjtsk = newKrovak()

// forward projects Bessel geodetic coordinates (radians) to the south-oriented
// Krovak plane: southing xp and westing yp in metres.
func (k krovak) forward(phi, lam float64) (xp, yp float64) {
	esin := k.e * math.Sin(phi)
	u := 2 * (math.Atan(k.t0*math.Pow(math.Tan(phi/2+math.Pi/4), k.b)/
		math.Pow((1+esin)/(1-esin), k.e*k.b/2)) - math.Pi/4)
	v := k.b * (k.lam0 - lam)
	t := math.Asin(math.Cos(k.alphaC)*math.Sin(u) + math.Sin(k.alphaC)*math.Cos(u)*math.Cos(v))
	d := math.Asin(math.Cos(u) * math.Sin(v) / math.Cos(t))
	theta := k.n * d
	r := k.r0 * math.Pow(math.Tan(math.Pi/4+k.phiP/2), k.n) / math.Pow(math.Tan(t/2+math.Pi/4), k.n)
	return r * math.Cos(theta), r * math.Sin(theta)
}

// inverse is the inverse of forward.
func (k krovak) inverse(xp, yp float64) (phi, lam float64) {
	r := math.Hypot(xp, yp)
	theta := math.Atan2(yp, xp)
	d := theta / math.Sin(k.phiP)
	t := 2 * (math.Atan(math.Pow(k.r0/r, 1/k.n)*math.Tan(math.Pi/4+k.phiP/2)) - math.Pi/4)
	u := math.Asin(math.Cos(k.alphaC)*math.Sin(t) - math.Sin(k.alphaC)*math.Cos(t)*math.Cos(d))
	v := math.Asin(math.Cos(t) * math.Sin(d) / math.Cos(u))

	base := math.Pow(k.t0, -1/k.b) * math.Pow(math.Tan(u/2+math.Pi/4), 1/k.b)
	phi = u
	for range 20 {
		esin := k.e * math.Sin(phi)
		next := 2 * (math.Atan(base*math.Pow((1+esin)/(1-esin), k.e/2)) - math.Pi/4)
		if math.Abs(next-phi) < 1e-14 {
			phi = next
			break
		}
		phi = next
	}
	return phi, k.lam0 - v/k.b
}

const toDeg = 180 / math.Pi

// KrovakToWGS84 converts S-JTSK / Krovak East North (EPSG:5514) coordinates in
// metres to WGS84 latitude and longitude in degrees.
func KrovakToWGS84(east, north float64) (lat, lon float64) {
	phi, lam := sjtsk.inverse(-north, -east)
	x, y, z := bessel1841.toECEF(phi, lam, 0)
	x, y, z = sjtskToWGS84.apply(x, y, z)
	phi, lam, _ = wgs84.fromECEF(x, y, z)
	return phi * toDeg, lam * toDeg
}

// WGS84ToKrovak converts WGS84 degrees to S-JTSK / Krovak East North metres.
func WGS84ToKrovak(lat, lon float64) (east, north float64) {
	x, y, z := wgs84.toECEF(lat/toDeg, lon/toDeg, 0)
	x, y, z = sjtskToWGS84.inverse().apply(x, y, z)
	phi, lam, _ := bessel1841.fromECEF(x, y, z)
	xp, yp := sjtsk.forward(phi, lam)
	return -yp, -xp
}

// earthRadius is the sphere radius used by Web Mercator.
const earthRadius = 6378137.0

// ToWebMercator converts WGS84 degrees to EPSG:3857 metres.
func ToWebMercator(lat, lon float64) (x, y float64) {
	x = earthRadius * lon / toDeg
	y = earthRadius * math.Log(math.Tan(math.Pi/4+lat/toDeg/2))
	return x, y
}

// FromWebMercator converts EPSG:3857 metres to WGS84 degrees.
func FromWebMercator(x, y float64) (lat, lon float64) {
	lon = x / earthRadius * toDeg
	lat = (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * toDeg
	return lat, lon
}
