package vox

// Voxel keys interleave x, y and z bits (10 bits per axis) so that sorting
// keys walks the grid in Morton order.

func expand3(v uint32) uint32 {
	v = (v | (v << 16)) & 0x030000FF
	v = (v | (v << 8)) & 0x0300F00F
	v = (v | (v << 4)) & 0x030C30C3
	v = (v | (v << 2)) & 0x09249249
	return v
}

func compact3(v uint32) uint32 {
	v &= 0x09249249
	v = (v | (v >> 2)) & 0x030C30C3
	v = (v | (v >> 4)) & 0x0300F00F
	v = (v | (v >> 8)) & 0x030000FF
	v = (v | (v >> 16)) & 0x000003FF
	return v
}

func morton3D(x, y, z uint32) uint32 {
	return expand3(x) | (expand3(y) << 1) | (expand3(z) << 2)
}

func mortonDecode3D(key uint32) (x, y, z uint32) {
	return compact3(key), compact3(key >> 1), compact3(key >> 2)
}
