// Package binaryfile classifies repository paths as binary or text by extension.
package binaryfile

import (
	"path"
	"strings"
)

// binaryExtensions are file extensions that are never fetched as text.
// Grouped roughly by kind; lookup is case-insensitive.
var binaryExtensions = map[string]bool{
	// images
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true,
	"ico": true, "tif": true, "tiff": true, "webp": true, "heic": true,
	"psd": true,
	// audio / video
	"mp3": true, "wav": true, "ogg": true, "flac": true, "m4a": true,
	"aac": true, "mp4": true, "avi": true, "mov": true, "mkv": true,
	"webm": true, "wmv": true,
	// archives
	"zip": true, "tar": true, "gz": true, "tgz": true, "bz2": true,
	"xz": true, "7z": true, "rar": true,
	// executables and build artifacts
	"exe": true, "dll": true, "so": true, "dylib": true, "bin": true,
	"o": true, "a": true, "class": true, "jar": true, "war": true,
	"pyc": true, "wasm": true,
	// fonts
	"ttf": true, "otf": true, "woff": true, "woff2": true, "eot": true,
	// documents
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true,
	// databases and misc blobs
	"db": true, "sqlite": true, "sqlite3": true, "dat": true,
}

// IsBinary reports whether the file at p should be treated as binary,
// judged by the text after the last dot of its base name. Paths without
// an extension are treated as text.
//
// The same decision must be applied wherever a path is considered for
// fetching, so that a path can never be fetched without being counted,
// or counted without being fetched.
func IsBinary(p string) bool {
	ext := strings.TrimPrefix(path.Ext(path.Base(p)), ".")
	if ext == "" {
		return false
	}
	return binaryExtensions[strings.ToLower(ext)]
}
