package concurrent

// CellJob addresses one overlay cell during customization.
type CellJob struct {
	Level int
	Cell  int32
}

func NewCellJob(level int, cell int32) CellJob {
	return CellJob{
		Level: level,
		Cell:  cell,
	}
}

// SearchJob is one endpoint search of a many-to-many query. Index is the row
// (source) or column (target) the search fills.
type SearchJob struct {
	Index int
}

func NewSearchJob(index int) SearchJob {
	return SearchJob{Index: index}
}

// KVCellJob is one batch of edge ids written under an H3 cell key.
type KVCellJob struct {
	Key     string
	EdgeIDs []int32
}

func NewKVCellJob(key string, edgeIDs []int32) KVCellJob {
	return KVCellJob{
		Key:     key,
		EdgeIDs: edgeIDs,
	}
}

type JobI interface {
	int | CellJob | SearchJob | KVCellJob
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}

type JobFunc[T JobI, G any] func(job T) G
