package memory

import (
	"testing"

	"github.com/viant/approvalflow/service/dao/request"
	"github.com/viant/approvalflow/service/dao/request/storetest"
)

func TestService(t *testing.T) {
	storetest.Run(t, func(t *testing.T) request.Store { return New() })
}
