package endoperation

import (
	maa "github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/resource"
)

// Register registers the results screen recognitions and the resource path
// sink with the agent server.
func Register(cfg *config.Config) {
	deps := &agentDeps{cfg: cfg}
	maa.AgentServerRegisterCustomRecognition("EndOperationRecognize", &EndOperationRecognition{deps: deps})
	maa.AgentServerRegisterCustomRecognition("EndOperationCheck", &EndOperationCheckRecognition{deps: deps})
	maa.AgentServerRegisterCustomRecognition("EndOperationAssert", &EndOperationAssert{})
	maa.AgentServerAddResourceSink(&resource.PathSink{})
}
