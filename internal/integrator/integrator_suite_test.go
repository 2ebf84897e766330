package integrator

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIntegratorScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Integrator Scenario Suite")
}
