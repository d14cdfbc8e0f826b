package group

// Sub returns p - q.
func (p *Point) Sub(q *Point) *Point {
	return p.Add(q.Negate())
}
