package marker

import "golang.org/x/sys/unix"

// DefaultAttribute is the extended attribute written by XattrStore.
const DefaultAttribute = "user.tmbliss.exclude"

var defaultValue = []byte("1")

const errNoAttr = unix.ENODATA
