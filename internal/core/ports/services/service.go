package services

// ServiceContainer bundles the service facades for injection into the HTTP
// layer.
type ServiceContainer struct {
	Auth  AuthSvcFacade
	Token TokenSvcFacade
	User  UserSvcFacade
}
