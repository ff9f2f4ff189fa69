// Package ocr defines the seam between rendered pages and a text recognition
// engine. Engines receive one encoded page image and return the recognized
// text, both as plain text and as blocks of lines with word boxes, so that the
// line parser can consume lines top to bottom without knowing which engine
// produced them.
package ocr
