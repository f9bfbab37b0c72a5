package adapter

var DecodeExtraction = decodeExtraction
