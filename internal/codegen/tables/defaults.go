package tables

// Default returns the lookup tables for a Masala-style project.
func Default(project, library string) Tables {
	return Tables{
		Naming: Naming{
			Project:            project,
			Library:            library,
			APISegmentIndex:    1,
			APINamespaceSuffix: "_api",
			APIClassSuffix:     "_API",
			GeneratedSegment:   "auto_generated_api",
			CreatorSuffix:      "Creator",
		},
		Containers: []TypeEntry{
			{Name: "std::vector", Include: "<vector>", Kind: KindSequence},
			{Name: "std::map", Include: "<map>", Kind: KindMap},
			{Name: "std::unordered_map", Include: "<unordered_map>", Kind: KindMap},
			{Name: "std::pair", Include: "<utility>", Kind: KindPair},
			{Name: "std::tuple", Include: "<tuple>", Kind: KindPair},
			{Name: "std::set", Include: "<set>", Kind: KindSet},
			{Name: "std::unordered_set", Include: "<unordered_set>", Kind: KindSet},
			{Name: "std::list", Include: "<list>", Kind: KindList},
			{Name: "std::deque", Include: "<deque>", Kind: KindList},
			{Name: "std::function", Include: "<functional>", Kind: KindFunction},
			{Name: "std::array", Include: "<array>", Kind: KindFixed},
			{Name: "Eigen::Matrix", Include: "<external/eigen/Eigen/Dense>", Kind: KindFixed},
			{Name: "Eigen::Vector", Include: "<external/eigen/Eigen/Dense>", Kind: KindFixed},
		},
		Indirections: []TypeEntry{
			{Name: "MASALA_SHARED_POINTER", Include: "<base/types.hh>", Kind: KindShared},
			{Name: "MASALA_WEAK_POINTER", Include: "<base/types.hh>", Kind: KindWeak},
			{Name: "std::shared_ptr", Include: "<memory>", Kind: KindShared},
			{Name: "std::weak_ptr", Include: "<memory>", Kind: KindWeak},
		},
		Enumerations: []TypeEntry{
			{Name: "masala::base::managers::database::elements::ElementTypeEnum", Include: "<base/managers/database/elements/ElementType.fwd.hh>"},
			{Name: "masala::base::managers::threads::MasalaThreadPoolState", Include: "<base/managers/threads/MasalaThreadPoolState.hh>"},
			{Name: "masala::base::managers::engine::MasalaEngineCategory", Include: "<base/managers/engine/MasalaEngineCategory.fwd.hh>"},
		},
		RootAPITypes: []TypeEntry{
			{Name: "masala::base::api::MasalaObjectAPIDefinition", Include: "<base/api/MasalaObjectAPIDefinition.fwd.hh>"},
		},
		ExternalNamespaces: []string{project + "::base"},
		Markers: []Marker{
			{Name: "masala::base::MasalaObject", Role: RolePlain},
			{Name: "masala::base::MasalaNoAPIObject", NoAPI: true},
			{Name: "masala::base::managers::plugin_module::MasalaPlugin", Role: RolePlugin},
			{Name: "masala::base::managers::engine::MasalaEngine", Role: RoleEngine},
			{Name: "masala::base::managers::engine::MasalaDataRepresentation", Role: RoleDataRepresentation},
			{Name: "masala::base::managers::file_interpreter::MasalaFileInterpreter", Role: RoleFileInterpreter},
		},
		RootWrappers: []RootWrapper{
			{
				Role:    RolePlain,
				Name:    "masala::base::api::MasalaObjectAPI",
				Include: "<base/api/MasalaObjectAPI.hh>",
			},
			{
				Role:           RolePlugin,
				Name:           "masala::base::managers::plugin_module::MasalaPluginAPI",
				Include:        "<base/managers/plugin_module/MasalaPluginAPI.hh>",
				CreatorBase:    "masala::base::managers::plugin_module::MasalaPluginCreator",
				CreatorInclude: "<base/managers/plugin_module/MasalaPluginCreator.hh>",
			},
			{
				Role:           RoleEngine,
				Name:           "masala::base::managers::engine::MasalaEngineAPI",
				Include:        "<base/managers/engine/MasalaEngineAPI.hh>",
				CreatorBase:    "masala::base::managers::engine::MasalaEngineCreator",
				CreatorInclude: "<base/managers/engine/MasalaEngineCreator.hh>",
			},
			{
				Role:           RoleDataRepresentation,
				Name:           "masala::base::managers::engine::MasalaDataRepresentationAPI",
				Include:        "<base/managers/engine/MasalaDataRepresentationAPI.hh>",
				CreatorBase:    "masala::base::managers::engine::MasalaDataRepresentationCreator",
				CreatorInclude: "<base/managers/engine/MasalaDataRepresentationCreator.hh>",
			},
			{
				Role:           RoleFileInterpreter,
				Name:           "masala::base::managers::file_interpreter::MasalaFileInterpreterAPI",
				Include:        "<base/managers/file_interpreter/MasalaFileInterpreterAPI.hh>",
				CreatorBase:    "masala::base::managers::file_interpreter::MasalaFileInterpreterCreator",
				CreatorInclude: "<base/managers/file_interpreter/MasalaFileInterpreterCreator.hh>",
			},
		},
		APIDefinitionAccessor:     "get_api_definition",
		ProtectedConstructorMacro: "ADD_PROTECTED_CONSTRUCTOR_DEFINITIONS",
		PublicConstructorMacro:    "ADD_PUBLIC_CONSTRUCTOR_DEFINITIONS",
		SharedPointer:             "MASALA_SHARED_POINTER",
		WeakPointer:               "MASALA_WEAK_POINTER",
		MakeShared:                "masala::make_shared",
		PluginRegistry:            "masala::base::managers::plugin_module::MasalaPluginModuleManager::get_instance()",
		PluginRegistryInclude:     "<base/managers/plugin_module/MasalaPluginModuleManager.hh>",
		ThrowMacro:                "MASALA_THROW",
		ErrorInclude:              "<base/error/ErrorHandling.hh>",
	}
}
