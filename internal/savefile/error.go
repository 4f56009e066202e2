package savefile

import "errors"

var (
	ErrUnableToDeleteExistingFile     = errors.New("unable to delete existing save file")
	ErrUnableToOpenFile               = errors.New("unable to open save file")
	ErrUnableToDeleteExistingHashFile = errors.New("unable to delete existing hash file")
	ErrUnableToOpenFileToWriteHash    = errors.New("unable to open hash file for writing")

	ErrFileDoesNotExist       = errors.New("save file does not exist")
	ErrHashFileDoesNotExist   = errors.New("hash file does not exist")
	ErrUnableToOpenHashFile   = errors.New("unable to open hash file")
	ErrHashVerificationFailed = errors.New("save file does not match its hash")
	ErrMalformedDocument      = errors.New("malformed save document")
	ErrUnsupportedVersion     = errors.New("unsupported save document version")
)
