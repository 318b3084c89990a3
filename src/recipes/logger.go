package recipes

import (
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("module", "recipes")
