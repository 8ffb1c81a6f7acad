package hmap

const (
	mapStatusNil    = 0
	mapStatusActive = 1
	mapStatusClosed = 2

	// expireId queue tags, low 2 bits of a packed expireId.
	queueTagNone   = 0
	queueTagCreate = 1
	queueTagUpdate = 2
	queueTagGet    = 3

	// notifyMode values for Clear.
	NotifySilent  = 0
	NotifyNormal  = 1
	NotifyTrigger = 2

	// maxIndexBits is the usable width of a hash when deriving index/segment.
	maxIndexBits = 32
)
