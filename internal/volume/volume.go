// Package volume holds the in-memory array types the numeric kernels operate
// on: a Volume is a single 3D image, a Series is a 4D functional acquisition.
// Full volumetric formats (NIfTI and friends) are handled by upstream
// collaborators; this package only models geometry and voxel data.
package volume

// Affine is a 4x4 voxel-to-world transform in row-major order.
type Affine [4][4]float64

// Identity returns the identity affine.
func Identity() Affine {
	return Affine{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Volume is a 3D scalar image. Data is stored x-fastest: the voxel (x, y, z)
// lives at index x + Dims[0]*(y + Dims[1]*z).
type Volume struct {
	Dims   [3]int
	Affine Affine
	Data   []float64
}

// NewVolume allocates a zero-filled volume with the given geometry.
func NewVolume(dims [3]int, affine Affine) *Volume {
	return &Volume{
		Dims:   dims,
		Affine: affine,
		Data:   make([]float64, dims[0]*dims[1]*dims[2]),
	}
}

// Index returns the flat data index for voxel (x, y, z).
func (v *Volume) Index(x, y, z int) int {
	return x + v.Dims[0]*(y+v.Dims[1]*z)
}

// At returns the value at voxel (x, y, z).
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[v.Index(x, y, z)]
}

// Set stores value at voxel (x, y, z).
func (v *Volume) Set(x, y, z int, value float64) {
	v.Data[v.Index(x, y, z)] = value
}

// VoxelCount returns the number of voxels in the volume.
func (v *Volume) VoxelCount() int {
	return v.Dims[0] * v.Dims[1] * v.Dims[2]
}

// SameGrid reports whether two volumes share shape and affine. Masks may only
// be applied to data on an identical grid.
func (v *Volume) SameGrid(o *Volume) bool {
	return v.Dims == o.Dims && v.Affine == o.Affine
}

// Grid returns the volume's geometry without its data.
func (v *Volume) Grid() Grid {
	return Grid{Dims: v.Dims, Affine: v.Affine}
}

// Grid is a reference geometry: a shape plus a voxel-to-world affine.
type Grid struct {
	Dims   [3]int
	Affine Affine
}

// Series is a 4D functional acquisition. Data is stored voxel-major: the
// sample for voxel index v at timepoint t lives at v*Timepoints + t, so a
// voxel's full time course is contiguous.
type Series struct {
	Dims       [3]int
	Timepoints int
	Affine     Affine
	Data       []float64
}

// NewSeries allocates a zero-filled series with the given geometry.
func NewSeries(dims [3]int, timepoints int, affine Affine) *Series {
	return &Series{
		Dims:       dims,
		Timepoints: timepoints,
		Affine:     affine,
		Data:       make([]float64, dims[0]*dims[1]*dims[2]*timepoints),
	}
}

// VoxelCount returns the number of voxels in one frame of the series.
func (s *Series) VoxelCount() int {
	return s.Dims[0] * s.Dims[1] * s.Dims[2]
}

// Course returns the time course of the flat voxel index as a slice into the
// series data. The slice aliases the underlying array.
func (s *Series) Course(voxel int) []float64 {
	return s.Data[voxel*s.Timepoints : (voxel+1)*s.Timepoints]
}

// At returns the sample at voxel (x, y, z) and timepoint t.
func (s *Series) At(x, y, z, t int) float64 {
	voxel := x + s.Dims[0]*(y+s.Dims[1]*z)
	return s.Data[voxel*s.Timepoints+t]
}

// Set stores a sample at voxel (x, y, z) and timepoint t.
func (s *Series) Set(x, y, z, t int, value float64) {
	voxel := x + s.Dims[0]*(y+s.Dims[1]*z)
	s.Data[voxel*s.Timepoints+t] = value
}

// SameGrid reports whether the series and a volume share shape and affine.
func (s *Series) SameGrid(v *Volume) bool {
	return s.Dims == v.Dims && s.Affine == v.Affine
}

// Grid returns the series' spatial geometry.
func (s *Series) Grid() Grid {
	return Grid{Dims: s.Dims, Affine: s.Affine}
}
