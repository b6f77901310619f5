package sample

//errgen:union
type StoreError interface {
	storeError()
}

//errgen:variant of=StoreError
//errgen:display "key {Key} missing"
type KeyMissing struct {
	Key string
}

//errgen:variant of=StoreError
//errgen:transparent
type IoFailed struct {
	Source error
}
