package cleanup

// Callbacks contains callback functions for monitoring deletion
type Callbacks struct {
	OnDeclined    func(info DeclinedInfo)
	OnFileDeleted func(info FileDeletedInfo)
	OnError       func(info ErrorInfo)
}

// DeclinedInfo describes a category the user did not confirm
type DeclinedInfo struct {
	Category Category
	Files    int
}

// FileDeletedInfo contains information about a deleted file
type FileDeletedInfo struct {
	Category Category
	Path     string
	Size     int64
}

// ErrorInfo contains error information
type ErrorInfo struct {
	Category Category
	Path     string
	Error    error
}

// callSafe safely calls a callback function if it's not nil
func callSafe[T any](fn func(T), info T) {
	if fn != nil {
		fn(info)
	}
}
