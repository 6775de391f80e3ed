package lodbuild

// cellKey is the integer 3D grid coordinate floor(center/step) used to
// bucket active splats for the neighbor scan (spec §4.C.3).
type cellKey struct{ x, y, z int64 }

func cellOf(center [3]float32, step float32) cellKey {
	return cellKey{
		x: floorDiv(center[0], step),
		y: floorDiv(center[1], step),
		z: floorDiv(center[2], step),
	}
}

func floorDiv(v, step float32) int64 {
	if step <= 0 {
		step = 1e-6
	}
	f := v / step
	i := int64(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}

// grid buckets active splat indices by cellKey and supports the 27-cell
// neighbor scan around one splat.
type grid struct {
	cells map[cellKey][]int
	cellOfIdx map[int]cellKey
}

func newGrid() *grid {
	return &grid{cells: make(map[cellKey][]int), cellOfIdx: make(map[int]cellKey)}
}

func (g *grid) add(idx int, center [3]float32, step float32) {
	k := cellOf(center, step)
	g.cells[k] = append(g.cells[k], idx)
	g.cellOfIdx[idx] = k
}

func (g *grid) remove(idx int) {
	k, ok := g.cellOfIdx[idx]
	if !ok {
		return
	}
	lst := g.cells[k]
	for i, v := range lst {
		if v == idx {
			lst[i] = lst[len(lst)-1]
			g.cells[k] = lst[:len(lst)-1]
			break
		}
	}
	delete(g.cellOfIdx, idx)
}

// neighbors returns every active index bucketed into the 27 cells
// surrounding center's cell (including its own cell), excluding idx.
func (g *grid) neighbors(idx int, center [3]float32, step float32) []int {
	k := cellOf(center, step)
	var out []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				nk := cellKey{k.x + dx, k.y + dy, k.z + dz}
				for _, v := range g.cells[nk] {
					if v != idx {
						out = append(out, v)
					}
				}
			}
		}
	}
	return out
}
