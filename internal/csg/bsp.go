package csg

// node is a BSP tree node. Polygons stored at a node are coplanar with its
// plane; front and back hold everything on either side.
type node struct {
	plane    *Plane
	front    *node
	back     *node
	polygons []*Polygon
}

func newNode(polygons []*Polygon) *node {
	n := &node{}
	n.build(polygons)
	return n
}

// invert turns solid space into empty space and vice versa.
func (n *node) invert() {
	for _, p := range n.polygons {
		p.flip()
	}
	if n.plane != nil {
		flipped := n.plane.flipped()
		n.plane = &flipped
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polygons that are inside this tree.
func (n *node) clipPolygons(polygons []*Polygon) []*Polygon {
	if n.plane == nil {
		return append([]*Polygon(nil), polygons...)
	}
	var f, b []*Polygon
	for _, p := range polygons {
		n.plane.splitPolygon(p, &f, &b, &f, &b)
	}
	if n.front != nil {
		f = n.front.clipPolygons(f)
	}
	if n.back != nil {
		b = n.back.clipPolygons(b)
	} else {
		b = nil
	}
	return append(f, b...)
}

// clipTo removes everything in this tree that is inside bsp.
func (n *node) clipTo(bsp *node) {
	n.polygons = bsp.clipPolygons(n.polygons)
	if n.front != nil {
		n.front.clipTo(bsp)
	}
	if n.back != nil {
		n.back.clipTo(bsp)
	}
}

func (n *node) allPolygons() []*Polygon {
	out := append([]*Polygon(nil), n.polygons...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

// build inserts polygons into the tree, choosing the first polygon's plane
// as the splitter for a fresh node.
func (n *node) build(polygons []*Polygon) {
	if len(polygons) == 0 {
		return
	}
	if n.plane == nil {
		p := polygons[0].Plane
		n.plane = &p
	}
	var f, b []*Polygon
	for _, p := range polygons {
		n.plane.splitPolygon(p, &n.polygons, &n.polygons, &f, &b)
	}
	if len(f) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		n.front.build(f)
	}
	if len(b) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		n.back.build(b)
	}
}
