package leanix

// platformQuery fetches one TechPlatform with its applications and the user
// groups that use each application.
const platformQuery = `
query GetPlatformById($id: ID!) {
    factSheet(id: $id) {
        id
        name
        displayName
        type
        description
        ... on TechPlatform {
            acronym
            relTechPlatformToApplication {
                edges {
                    node {
                        factSheet {
                            id
                            name
                            displayName
                            description
                            ... on Application {
                                acronym
                                relApplicationToUserGroup {
                                    edges {
                                        node {
                                            factSheet {
                                                id
                                                name
                                                displayName
                                                description
                                                ... on UserGroup {
                                                    acronym
                                                }
                                            }
                                        }
                                    }
                                }
                            }
                        }
                    }
                }
            }
        }
    }
}`

// interfacesQuery fetches interfaces with their provider and consumer
// applications.
const interfacesQuery = `
query GetInterfaces($limit: Int!) {
    allFactSheets(factSheetType: Interface, first: $limit) {
        totalCount
        edges {
            node {
                id
                name
                displayName
                type
                description
                ... on Interface {
                    acronym
                    relInterfaceToProviderApplication {
                        edges {
                            node {
                                factSheet {
                                    id
                                    name
                                    displayName
                                }
                            }
                        }
                    }
                    relInterfaceToConsumerApplication {
                        edges {
                            node {
                                factSheet {
                                    id
                                    name
                                    displayName
                                }
                            }
                        }
                    }
                }
            }
        }
    }
}`

// pingQuery counts applications to check connectivity and credentials.
const pingQuery = `
query TestConnection {
    allFactSheets(factSheetType: Application, first: 1) {
        totalCount
    }
}`

// interfaceLimit caps the interface page size.
const interfaceLimit = 1000
