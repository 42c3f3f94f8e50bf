package contractor

/*
witnessSearch runs a dijkstra from source over uncontracted nodes ignoring
ignoreNodeID. The search stops once the smallest key exceeds acceptedWeight
or maxSettled nodes were settled; afterwards the heap holds an upper bound of
the witness cost for every reached node.
*/
func (c *Contractor) witnessSearch(source, ignoreNodeID int32, acceptedWeight float64, maxSettled int) {
	pq := c.witnessHeap
	pq.Clear()
	pq.Insert(source, 0, struct{}{})

	settled := 0
	for !pq.Empty() && settled < maxSettled {
		if pq.MinKey() > acceptedWeight {
			return
		}
		u := pq.DeleteMin()
		settled++
		dist := pq.GetKey(u)

		for _, id := range c.outEdges[u] {
			edge := c.edges[id]
			to := edge.ToNodeID
			if to == ignoreNodeID || c.contracted[to] {
				continue
			}

			newCost := dist + edge.Weight
			if !pq.WasInserted(to) {
				pq.Insert(to, newCost, struct{}{})
			} else if newCost < pq.GetKey(to) {
				pq.DecreaseKey(to, newCost, struct{}{})
			}
		}
	}
}
