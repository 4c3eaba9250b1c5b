// Copyright 2014 Manu Martinez-Almeida. All rights reserved.
// see: https://github.com/gin-gonic/gin/blob/master/binding/json.go
package chain

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// EnableDecoderUseNumber is used to call the UseNumber method on the JSON
// Decoder instance. UseNumber causes the Decoder to unmarshal a number into an
// any as a Number instead of as a float64.
var EnableDecoderUseNumber = false

// EnableDecoderDisallowUnknownFields is used to call the DisallowUnknownFields method
// on the JSON Decoder instance.
var EnableDecoderDisallowUnknownFields = false

type jsonBinding struct{}

func (jsonBinding) Bind(ctx *Context, obj any) (err error) {
	var body []byte
	if body, err = ctx.BodyBytes(); err != nil {
		return err
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	if EnableDecoderUseNumber {
		decoder.UseNumber()
	}
	if EnableDecoderDisallowUnknownFields {
		decoder.DisallowUnknownFields()
	}

	if err = decoder.Decode(obj); err != nil {
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
