package jnibind

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jnibind")
