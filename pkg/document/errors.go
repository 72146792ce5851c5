package document

import (
	"encoding/json"

	lsserrors "github.com/dbros-oss/lss-broker/pkg/errors"
)

var errInvalidJSON = lsserrors.Wrap("malformed JSON body", lsserrors.ErrInvalidInput)

func marshalJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, lsserrors.Wrap("marshal document", err)
	}
	return data, nil
}
