package remote

import (
	"errors"

	"github.com/dmitrijs2005/statusboard/internal/common"
)

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}
