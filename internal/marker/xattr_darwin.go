package marker

import "golang.org/x/sys/unix"

// DefaultAttribute is the attribute Time Machine reads for sticky exclusions.
const DefaultAttribute = "com.apple.metadata:com_apple_backup_excludeItem"

// defaultValue is the binary property list for the string
// "com.apple.backupd", which is what tmutil writes.
var defaultValue = []byte{
	'b', 'p', 'l', 'i', 's', 't', '0', '0',
	0x5f, 0x10, 0x11,
	'c', 'o', 'm', '.', 'a', 'p', 'p', 'l', 'e', '.',
	'b', 'a', 'c', 'k', 'u', 'p', 'd',
	0x08,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1c,
}

const errNoAttr = unix.ENOATTR
