package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion builds the unit quaternion described by rotation vector
// values x, y, z and an optional scalar part. Without the scalar it is
// recovered from the unit norm.
func Quaternion(values []float64) quat.Number {
	x, y, z := values[0], values[1], values[2]

	var w float64
	if len(values) >= 4 {
		w = values[3]
	} else {
		w = 1 - x*x - y*y - z*z
		if w > 0 {
			w = math.Sqrt(w)
		} else {
			w = 0
		}
	}

	q := quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
	if n := quat.Abs(q); n > 0 && n != 1 {
		q = quat.Scale(1/n, q)
	}
	return q
}

// RotationMatrix returns the row-major 3x3 matrix rotating device
// coordinates into the east-north-up world frame.
func RotationMatrix(q quat.Number) [9]float64 {
	q0, q1, q2, q3 := q.Real, q.Imag, q.Jmag, q.Kmag

	sqq1 := 2 * q1 * q1
	sqq2 := 2 * q2 * q2
	sqq3 := 2 * q3 * q3
	q1q2 := 2 * q1 * q2
	q3q0 := 2 * q3 * q0
	q1q3 := 2 * q1 * q3
	q2q0 := 2 * q2 * q0
	q2q3 := 2 * q2 * q3
	q1q0 := 2 * q1 * q0

	return [9]float64{
		1 - sqq2 - sqq3, q1q2 - q3q0, q1q3 + q2q0,
		q1q2 + q3q0, 1 - sqq1 - sqq3, q2q3 - q1q0,
		q1q3 - q2q0, q2q3 + q1q0, 1 - sqq1 - sqq2,
	}
}

// Orientation returns azimuth, pitch and roll in radians for a rotation
// matrix. Azimuth is the angle from magnetic north, clockwise positive,
// in (-pi, pi].
func Orientation(r [9]float64) (azimuth, pitch, roll float64) {
	azimuth = math.Atan2(r[1], r[4])
	pitch = math.Asin(-r[7])
	roll = math.Atan2(-r[6], r[8])
	return azimuth, pitch, roll
}

// AzimuthDegrees runs the full rotation vector -> matrix -> orientation
// transform and returns the azimuth in degrees.
func AzimuthDegrees(values []float64) float64 {
	azimuth, _, _ := Orientation(RotationMatrix(Quaternion(values)))
	return azimuth * 180 / math.Pi
}

// VectorForAzimuth returns rotation vector values (x, y, z, w) for a
// device lying flat and pointing at azimuthDeg. The inverse of
// AzimuthDegrees for level attitudes.
func VectorForAzimuth(azimuthDeg float64) []float64 {
	half := -azimuthDeg * math.Pi / 360
	return []float64{0, 0, math.Sin(half), math.Cos(half)}
}
