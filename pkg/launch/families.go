package launch

import "github.com/aretw0/launchtree/pkg/domain"

// Entity families. The values are the "type" tags of serialized nodes.
const (
	FamilyLaunchDescription        domain.Family = "LaunchDescription"
	FamilyInclude                  domain.Family = "IncludeLaunchDescription"
	FamilyGroup                    domain.Family = "GroupAction"
	FamilyNode                     domain.Family = "Node"
	FamilyContainer                domain.Family = "ComposableNodeContainer"
	FamilyLoadComposableNodes      domain.Family = "LoadComposableNodes"
	FamilyDeclareArgument          domain.Family = "DeclareLaunchArgument"
	FamilySetLaunchConfiguration   domain.Family = "SetLaunchConfiguration"
	FamilyPushLaunchConfigurations domain.Family = "PushLaunchConfigurations"
	FamilyPopLaunchConfigurations  domain.Family = "PopLaunchConfigurations"
	FamilySetEnvironment           domain.Family = "SetEnvironmentVariable"
	FamilyUnsetEnvironment         domain.Family = "UnsetEnvironmentVariable"
	FamilyPushEnvironment          domain.Family = "PushEnvironment"
	FamilyPopEnvironment           domain.Family = "PopEnvironment"
	FamilyPushRosNamespace         domain.Family = "PushRosNamespace"
	FamilySetParameter             domain.Family = "SetParameter"
	FamilySetRemap                 domain.Family = "SetRemap"
	FamilyTimer                    domain.Family = "TimerAction"

	unknownPrefix = "Unknown:"
)
